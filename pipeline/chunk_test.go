// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_AggChunk_ReleaseReturnsBufferToCache(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cache := NewBufferCache(nil)
	consumer, err := cache.Register(0)
	is.NoError(err)

	buf := consumer.Acquire(32)
	agg := AggChunk{Chunk: Chunk{Index: 0, Data: buf}, WorkerID: 0, cache: cache}

	agg.Release()

	recycled := consumer.Acquire(32)
	is.Equal(&buf[0], &recycled[0])
}
