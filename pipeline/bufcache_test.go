// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingWarner struct {
	mu       sync.Mutex
	messages []string
}

func (w *recordingWarner) Warnf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, fmt.Sprintf(format, args...))
}

func (w *recordingWarner) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages)
}

func Test_BufferCache_RegisterAcquireRelease(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cache := NewBufferCache(nil)
	consumer, err := cache.Register(0)
	is.NoError(err)

	buf := consumer.Acquire(128)
	is.Len(buf, 128)

	cache.Release(0, buf)
	recycled := consumer.Acquire(128)
	is.Equal(&buf[0], &recycled[0], "Acquire should reuse the released backing array")
}

func Test_BufferCache_AcquireZeroesRecycledBuffer(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cache := NewBufferCache(nil)
	consumer, err := cache.Register(0)
	is.NoError(err)

	buf := consumer.Acquire(16)
	for i := range buf {
		buf[i] = 0xFF
	}
	cache.Release(0, buf)

	recycled := consumer.Acquire(16)
	for _, b := range recycled {
		is.Equal(byte(0), b)
	}
}

func Test_BufferCache_AcquireGrowsWhenRecycledBufferTooSmall(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cache := NewBufferCache(nil)
	consumer, err := cache.Register(0)
	is.NoError(err)

	small := consumer.Acquire(8)
	cache.Release(0, small)

	bigger := consumer.Acquire(64)
	is.Len(bigger, 64)
}

func Test_BufferCache_RegisterDuplicateErrors(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cache := NewBufferCache(nil)
	_, err := cache.Register(5)
	is.NoError(err)

	_, err = cache.Register(5)
	is.Error(err)
}

func Test_BufferCache_ReleaseToUnregisteredWorkerPanics(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cache := NewBufferCache(nil)
	is.Panics(func() {
		cache.Release(42, make([]byte, 4))
	})
}

func Test_BufferCache_ReleaseToClosedSlotWarnsOnce(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	warner := &recordingWarner{}
	cache := NewBufferCache(warner)
	_, err := cache.Register(0)
	is.NoError(err)

	cache.Close(0)

	cache.Release(0, make([]byte, 4))
	cache.Release(0, make([]byte, 4))
	cache.Release(0, make([]byte, 4))

	is.Equal(1, warner.count(), "a release-to-closed-slot warning must be logged at most once per slot")
}

func Test_BufferCache_CloseUnregisteredWorkerIsNoop(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cache := NewBufferCache(nil)
	is.NotPanics(func() {
		cache.Close(999)
	})
}

func Test_BufferCache_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cache := NewBufferCache(nil)
	_, err := cache.Register(1)
	is.NoError(err)

	is.NotPanics(func() {
		cache.Close(1)
		cache.Close(1)
	})
}
