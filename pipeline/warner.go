// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

// Warner is the side channel for non-fatal warnings raised by the pipeline core: a
// misaligned activation offset, or a buffer released to a worker slot that has already
// been closed during shutdown. The core never picks a concrete logging destination itself;
// callers inject one (cmd/disktest wires a logrus.Logger, tests wire a recording stub).
type Warner interface {
	Warnf(format string, args ...any)
}

// noopWarner discards every warning. It is the default when no Warner is configured.
type noopWarner struct{}

func (noopWarner) Warnf(string, ...any) {}

// Recorder is the side channel for pipeline metrics: per-worker queue occupancy and
// aggregate throughput. Like Warner, it is optional and has no effect unless a caller
// supplies a concrete implementation (see internal/metrics for the Prometheus-backed one).
type Recorder interface {
	// ObserveQueueLevel reports a worker's current pending-chunk level after a push or pop.
	ObserveQueueLevel(workerID uint32, level int64)
	// ObserveBytesProduced reports bytes handed to a caller via a successful pull.
	ObserveBytesProduced(n int)
	// IncMisalignedActivation counts an Activate call that required offset rounding.
	IncMisalignedActivation()
}

// noopRecorder discards every observation. It is the default when no Recorder is configured.
type noopRecorder struct{}

func (noopRecorder) ObserveQueueLevel(uint32, int64) {}
func (noopRecorder) ObserveBytesProduced(int)        {}
func (noopRecorder) IncMisalignedActivation()        {}
