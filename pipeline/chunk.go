// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

// Chunk is a unit of generated keystream data: chunk_factor * base_size bytes, tagged with
// a monotonically increasing per-worker index starting at 0 at worker activation.
type Chunk struct {
	Index uint64
	Data  []byte
}

// AggChunk is a Chunk handed out by an Aggregator, additionally carrying the id of the
// worker that produced it. The consumer is the sole mutator while it holds one; Release
// must be called exactly once to return the underlying buffer to its originating worker's
// cache slot.
type AggChunk struct {
	Chunk
	WorkerID uint32

	cache *BufferCache
}

// Release returns the chunk's buffer to the cache slot of the worker that produced it, for
// reuse by that worker's producer goroutine. After Release, the chunk's Data must not be
// read or written.
func (c AggChunk) Release() {
	c.cache.Release(c.WorkerID, c.Data)
}
