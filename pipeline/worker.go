// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import (
	"sync"
	"sync/atomic"
	"time"
)

// Worker runs one Generator on a dedicated producer goroutine and feeds the chunks it
// computes into a bounded queue that the Aggregator drains (component W of the design). A
// Worker is constructed idle; Activate starts its producer goroutine, Stop tears it down.
// It is single-use per activation cycle: Activate always stops any prior goroutine first,
// so re-activation restarts the worker cleanly.
type Worker struct {
	workerID uint32
	seed     []byte
	genType  GeneratorType
	cache    *BufferCache
	consumer *CacheConsumer
	cfg      *Config

	mu       sync.Mutex
	active   bool
	outbound chan Chunk
	wg       sync.WaitGroup

	abort        atomic.Bool
	errFlag      atomic.Bool
	pendingLevel atomic.Int64
}

// newWorker constructs an idle worker bound to the given cache slot. It derives its
// per-worker seed from seed via the pipeline's KDF, as a pure function of (seed, workerID).
func newWorker(genType GeneratorType, seed []byte, workerID uint32, cache *BufferCache, consumer *CacheConsumer, cfg *Config) *Worker {
	return &Worker{
		workerID: workerID,
		seed:     deriveWorkerSeed(seed, workerID),
		genType:  genType,
		cache:    cache,
		consumer: consumer,
		cfg:      cfg,
	}
}

// ChunkSize returns base_size * chunk_factor for this worker's generator type.
func (w *Worker) ChunkSize() int {
	baseSize, chunkFactor := generatorConstants(w.genType)
	return baseSize * chunkFactor
}

// Activate stops any prior producer goroutine, then spawns a new one seeked to byteOffset.
// It resets the abort flag, error flag, and pending-chunk level.
func (w *Worker) Activate(byteOffset uint64) {
	w.Stop()

	w.mu.Lock()
	w.abort.Store(false)
	w.errFlag.Store(false)
	w.pendingLevel.Store(0)
	outbound := make(chan Chunk, w.cfg.LevelThres)
	w.outbound = outbound
	w.active = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(byteOffset, outbound)
}

// run is the producer goroutine body: seek once, then repeatedly generate and publish
// chunks, backing off whenever the pending level reaches the configured threshold.
func (w *Worker) run(byteOffset uint64, outbound chan Chunk) {
	defer w.wg.Done()

	generator, err := newGenerator(w.genType, w.seed)
	if err != nil {
		w.errFlag.Store(true)
		return
	}
	if err := generator.Seek(byteOffset); err != nil {
		w.errFlag.Store(true)
		return
	}

	chunkSize := generator.BaseSize() * generator.ChunkFactor()
	factor := generator.ChunkFactor()
	var index uint64

	for {
		if w.abort.Load() {
			return
		}
		if w.pendingLevel.Load() >= w.cfg.LevelThres {
			time.Sleep(w.cfg.ProducerIdleSleep)
			continue
		}

		buf := w.consumer.Acquire(chunkSize)
		generator.Next(buf, factor)

		outbound <- Chunk{Index: index, Data: buf}
		index++

		level := w.pendingLevel.Add(1)
		w.cfg.Recorder.ObserveQueueLevel(w.workerID, level)
	}
}

// TryPull returns the next queued chunk, if one is available. It returns ok == false with a
// nil error when nothing is queued yet, and a non-nil error if the producer goroutine
// encountered a generator seek failure.
func (w *Worker) TryPull() (chunk Chunk, ok bool, err error) {
	w.mu.Lock()
	outbound := w.outbound
	active := w.active
	w.mu.Unlock()

	if !active {
		return Chunk{}, false, nil
	}
	if w.errFlag.Load() {
		return Chunk{}, false, ErrGeneratorSeek
	}

	select {
	case chunk, chOk := <-outbound:
		if !chOk {
			return Chunk{}, false, nil
		}
		level := w.pendingLevel.Add(-1)
		w.cfg.Recorder.ObserveQueueLevel(w.workerID, level)
		return chunk, true, nil
	default:
		return Chunk{}, false, nil
	}
}

// IsActive reports whether the worker currently has a producer goroutine running.
func (w *Worker) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Stop signals abort and joins the producer goroutine. It is idempotent: calling it on an
// already-stopped (or never-activated) worker is a no-op. Any chunks still queued at abort
// time are discarded, and their buffers are returned to the cache.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return
	}
	w.abort.Store(true)
	outbound := w.outbound
	w.active = false
	w.mu.Unlock()

	w.wg.Wait()

	for {
		select {
		case chunk, ok := <-outbound:
			if !ok {
				return
			}
			w.cache.Release(w.workerID, chunk.Data)
		default:
			return
		}
	}
}

// Close permanently retires the worker: it stops the producer goroutine and closes its
// buffer cache slot, so that any in-flight Release for this worker is tolerated but drops
// its buffer instead of being recycled.
func (w *Worker) Close() {
	w.Stop()
	w.cache.Close(w.workerID)
}
