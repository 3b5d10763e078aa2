// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import (
	"context"
	"fmt"
	"time"
)

// MaxWorkerCount is the largest worker_count NewAggregator accepts.
const MaxWorkerCount = 65536

// Aggregator coordinates N Workers and exposes them as a single logical chunk stream,
// indexed by byte offset (component A of the design). Pulls are round-robined across
// workers in strict order, so the concatenation of chunks pulled over time equals the
// deterministic keystream starting at the offset the aggregator was last activated with.
type Aggregator struct {
	genType      GeneratorType
	seed         []byte
	workerCount  uint32
	workers      []*Worker
	cache        *BufferCache
	cfg          Config
	currentIndex uint32
	active       bool
	closed       bool
}

// NewAggregator constructs an Aggregator for worker_count workers of the given generator
// type, keyed by seed. worker_count out of the range [1, MaxWorkerCount] is a programmer
// error and panics, matching the pipeline's error model for invariant violations.
func NewAggregator(genType GeneratorType, seed []byte, workerCount int, opts ...Option) (*Aggregator, error) {
	if workerCount < 1 || workerCount > MaxWorkerCount {
		panic(fmt.Sprintf("pipeline: worker_count %d out of range [1, %d]", workerCount, MaxWorkerCount))
	}
	if _, _, err := validateGeneratorType(genType); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize()

	cache := NewBufferCache(cfg.Warner)
	workers := make([]*Worker, workerCount)
	for i := 0; i < workerCount; i++ {
		id := uint32(i)
		consumer, err := cache.Register(id)
		if err != nil {
			// Unreachable: ids are unique by construction.
			return nil, err
		}
		workers[i] = newWorker(genType, seed, id, cache, consumer, &cfg)
	}

	return &Aggregator{
		genType:     genType,
		seed:        seed,
		workerCount: uint32(workerCount),
		workers:     workers,
		cache:       cache,
		cfg:         cfg,
	}, nil
}

func validateGeneratorType(t GeneratorType) (baseSize, chunkFactor int, err error) {
	baseSize, chunkFactor = generatorConstants(t)
	if baseSize == 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownGeneratorType, int(t))
	}
	return baseSize, chunkFactor, nil
}

// ChunkSize returns base_size * chunk_factor for the aggregator's generator type. It is
// identical across all of the aggregator's workers.
func (a *Aggregator) ChunkSize() int {
	baseSize, chunkFactor := generatorConstants(a.genType)
	return baseSize * chunkFactor
}

// Activate (re)starts every worker so that the concatenation of chunks pulled from this
// point on equals the deterministic keystream starting at byteOffset.
//
// If byteOffset is not a multiple of ChunkSize, it is rounded down to the nearest multiple,
// a warning naming the original and adjusted values is emitted, and the adjusted offset is
// returned. Activate panics if the aggregator has been Closed.
func (a *Aggregator) Activate(byteOffset uint64) (uint64, error) {
	if a.closed {
		panic(ErrAggregatorStopped)
	}

	chunkSize := uint64(a.ChunkSize())
	adjusted := byteOffset
	if rem := byteOffset % chunkSize; rem != 0 {
		adjusted = byteOffset - rem
		a.cfg.Warner.Warnf(
			"seek offset %d is not a multiple of the chunk size %d bytes; adjusted to %d",
			byteOffset, chunkSize, adjusted,
		)
		a.cfg.Recorder.IncMisalignedActivation()
	}

	chunkIndex := adjusted / chunkSize
	n := uint64(a.workerCount)
	current := chunkIndex % n
	iteration := chunkIndex / n

	for i, w := range a.workers {
		var threadOffset uint64
		if uint64(i) < current {
			threadOffset = (iteration + 1) * chunkSize
		} else {
			threadOffset = iteration * chunkSize
		}
		w.Activate(threadOffset)
	}

	a.currentIndex = uint32(current)
	a.active = true
	return adjusted, nil
}

// IsActive reports whether Activate has been called without a subsequent Close.
func (a *Aggregator) IsActive() bool {
	return a.active
}

// TryPull returns the next chunk in round-robin order, if the worker currently due to
// supply it has one ready. It never reorders: if the current worker has nothing queued,
// TryPull returns ok == false even if a later worker is ready.
func (a *Aggregator) TryPull() (chunk AggChunk, ok bool, err error) {
	if a.closed {
		panic(ErrAggregatorStopped)
	}
	if !a.active {
		return AggChunk{}, false, nil
	}

	w := a.workers[a.currentIndex]
	c, ok, err := w.TryPull()
	if err != nil {
		return AggChunk{}, false, err
	}
	if !ok {
		return AggChunk{}, false, nil
	}

	agg := AggChunk{Chunk: c, WorkerID: a.currentIndex, cache: a.cache}
	a.currentIndex = (a.currentIndex + 1) % a.workerCount
	a.cfg.Recorder.ObserveBytesProduced(len(c.Data))
	return agg, true, nil
}

// Pull blocks until a chunk is available, an error is raised, or ctx is done. Aborting the
// underlying pipeline is the caller's responsibility (typically by cancelling ctx); Pull
// itself only observes ctx, it does not inspect any abort flag.
func (a *Aggregator) Pull(ctx context.Context) (AggChunk, error) {
	for {
		chunk, ok, err := a.TryPull()
		if err != nil {
			return AggChunk{}, err
		}
		if ok {
			return chunk, nil
		}

		select {
		case <-ctx.Done():
			return AggChunk{}, ctx.Err()
		case <-time.After(a.cfg.ConsumerIdleSleep):
		}
	}
}

// Close stops every worker and permanently retires the aggregator. Any further call to
// Activate, TryPull, or Pull panics.
func (a *Aggregator) Close() {
	for _, w := range a.workers {
		w.Close()
	}
	a.active = false
	a.closed = true
}
