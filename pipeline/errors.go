// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import "errors"

// ErrGeneratorSeek is returned by TryPull/Pull when a worker's producer goroutine failed
// to seek its generator to the requested activation offset. The failure is non-recoverable
// for that activation; the caller must Activate again (typically at a different offset).
var ErrGeneratorSeek = errors.New("pipeline: generator seek failed")

// ErrAggregatorStopped is the value Activate and TryPull (and so Pull) panic with when called
// on an Aggregator after Close. Unlike an Aggregator that simply hasn't been Activated yet, a
// closed Aggregator can never be used again.
var ErrAggregatorStopped = errors.New("pipeline: aggregator is closed")

// ErrUnknownGeneratorType is returned by NewAggregator when the supplied GeneratorType has
// no registered implementation.
var ErrUnknownGeneratorType = errors.New("pipeline: unknown generator type")

// ErrOffsetMisaligned is returned by a Generator's Seek when the requested byte offset is
// not a multiple of BaseSize. The Aggregator never triggers this in practice, since it
// always rounds down to a chunk boundary (itself a multiple of BaseSize) before seeking,
// but Generator implementations validate it independently as a documented precondition.
var ErrOffsetMisaligned = errors.New("pipeline: seek offset is not a multiple of the generator's base size")
