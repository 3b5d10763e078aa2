// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package pipeline implements the parallel chunk-generation pipeline at the core of
// disktest: a deterministic, seed-derived pseudo-random byte stream that can be produced
// or re-derived starting from any chunk-aligned byte offset.
//
// An Aggregator fans a single logical keystream out across N Worker goroutines, each
// running its own Generator on a dedicated producer goroutine. Workers are rate-limited
// by a pending-chunk watermark so that memory stays bounded regardless of how far ahead
// production runs of consumption. Buffers are recycled through a per-worker BufferCache so
// that, once the pipeline reaches steady state, no further allocation is required on the
// hot path.
//
// Callers drive the pipeline as: Activate(offset), then repeatedly Pull() / TryPull(),
// using the returned chunk's bytes and releasing it back to the cache when done. The
// package does not read or write any device itself; that is the responsibility of the
// caller (see cmd/disktest for a concrete I/O driver).
package pipeline
