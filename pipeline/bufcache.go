// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import (
	"fmt"
	"sync"
)

// cacheSlotCapacity bounds how many buffers a single worker's recycle slot holds before
// Release starts dropping them. It only needs to cover chunks in flight plus a few held
// momentarily by the consumer; sizing it generously relative to DefaultLevelThres keeps the
// cache from ever becoming the bottleneck.
const cacheSlotCapacity = 4 * DefaultLevelThres

// bufferSlot is one worker's recycle channel, plus the bookkeeping needed to tolerate a
// release racing with that worker's shutdown.
type bufferSlot struct {
	ch       chan []byte
	mu       sync.Mutex
	closed   bool
	warnOnce sync.Once
}

// BufferCache is the pipeline's per-worker buffer recycling pool (component C of the
// design). The aggregator returns used chunk buffers to the cache keyed by worker id; each
// worker's producer goroutine polls its own slot to reuse a buffer instead of allocating.
//
// BufferCache itself is driven from a single logical owner (the Aggregator, process-side);
// each worker's slot is a many-writer/one-reader hand-off from that owner to the worker's
// producer goroutine.
type BufferCache struct {
	mu     sync.Mutex
	slots  map[uint32]*bufferSlot
	warner Warner
}

// NewBufferCache constructs an empty cache. warner may be nil, in which case warnings are
// discarded.
func NewBufferCache(warner Warner) *BufferCache {
	if warner == nil {
		warner = noopWarner{}
	}
	return &BufferCache{
		slots:  make(map[uint32]*bufferSlot),
		warner: warner,
	}
}

// Register opens a recycling slot for workerID and returns a consumer handle bound to it.
// It returns an error if workerID is already registered.
func (c *BufferCache) Register(workerID uint32) (*CacheConsumer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.slots[workerID]; exists {
		return nil, fmt.Errorf("pipeline: worker %d is already registered with the buffer cache", workerID)
	}
	slot := &bufferSlot{ch: make(chan []byte, cacheSlotCapacity)}
	c.slots[workerID] = slot
	return &CacheConsumer{slot: slot}, nil
}

// Release enqueues buf into workerID's recycle slot.
//
// Release to an unregistered worker id is a programmer error and panics, matching the
// pipeline's error model for invariant violations that should never occur outside a coding
// mistake. Release to a slot that has been Close'd (its consumer gone, typically during
// shutdown) is tolerated: the buffer is silently dropped, and a warning is logged at most
// once per slot.
func (c *BufferCache) Release(workerID uint32, buf []byte) {
	c.mu.Lock()
	slot, ok := c.slots[workerID]
	c.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("pipeline: release to unregistered worker %d", workerID))
	}

	slot.mu.Lock()
	closed := slot.closed
	slot.mu.Unlock()
	if closed {
		slot.warnOnce.Do(func() {
			c.warner.Warnf("buffer cache: dropped buffer released to closed slot for worker %d", workerID)
		})
		return
	}

	select {
	case slot.ch <- buf:
	default:
		// Slot is momentarily full; dropping here is a pure performance detail; the
		// buffer is simply garbage-collected and the worker allocates fresh next time.
	}
}

// Close marks workerID's slot closed. Any Release still in flight for that worker from this
// point on drops its buffer instead of enqueuing it. Close is idempotent and safe to call
// even if workerID was never registered.
func (c *BufferCache) Close(workerID uint32) {
	c.mu.Lock()
	slot, ok := c.slots[workerID]
	c.mu.Unlock()
	if !ok {
		return
	}
	slot.mu.Lock()
	slot.closed = true
	slot.mu.Unlock()
}

// CacheConsumer is the worker-side handle returned by BufferCache.Register.
type CacheConsumer struct {
	slot *bufferSlot
}

// Acquire returns a buffer of exactly desiredLen bytes. If a recycled buffer is available
// in the slot, it is reused (resized and zero-filled as needed); otherwise a fresh buffer is
// allocated.
func (cc *CacheConsumer) Acquire(desiredLen int) []byte {
	select {
	case buf := <-cc.slot.ch:
		return resizeZero(buf, desiredLen)
	default:
		return make([]byte, desiredLen)
	}
}

// resizeZero returns a zero-filled slice of length n, reusing buf's backing array when it
// has enough capacity.
func resizeZero(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}
