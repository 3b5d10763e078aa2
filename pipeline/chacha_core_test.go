// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/chacha20"

	"github.com/stretchr/testify/assert"
)

// Test_ChaChaBlock_20RoundsMatchesEcosystemCipher pins the hand-rolled core against
// golang.org/x/crypto/chacha20 for the one round count both implementations share, so a
// mistake in the quarter-round construction would be caught even though ChaCha20 itself is
// produced via the ecosystem package in production code.
func Test_ChaChaBlock_20RoundsMatchesEcosystemCipher(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var key [32]byte
	var nonce [12]byte
	for i := range key {
		key[i] = byte(i)
	}
	for i := range nonce {
		nonce[i] = byte(i + 1)
	}

	var got [chachaBlockSize]byte
	chachaBlock(20, key, nonce, 0, &got)

	want := make([]byte, chachaBlockSize)
	ref, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	is.NoError(err)
	ref.XORKeyStream(want, make([]byte, chachaBlockSize))

	is.True(bytes.Equal(got[:], want), "hand-rolled 20-round core must match the ecosystem cipher's keystream")
}

func Test_ReducedChaChaCipher_CounterAdvancesAcrossBlocks(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var key [32]byte
	var nonce [12]byte
	c := newReducedChaChaCipher(8, key, nonce)

	dst := make([]byte, chachaBlockSize*2)
	c.XORKeyStream(dst, make([]byte, len(dst)))

	var block0, block1 [chachaBlockSize]byte
	chachaBlock(8, key, nonce, 0, &block0)
	chachaBlock(8, key, nonce, 1, &block1)

	is.True(bytes.Equal(dst[:chachaBlockSize], block0[:]))
	is.True(bytes.Equal(dst[chachaBlockSize:], block1[:]))
}

func Test_ReducedChaChaCipher_SetCounterRepositions(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var key [32]byte
	var nonce [12]byte
	c := newReducedChaChaCipher(12, key, nonce)
	c.SetCounter(5)

	dst := make([]byte, chachaBlockSize)
	c.XORKeyStream(dst, make([]byte, chachaBlockSize))

	var want [chachaBlockSize]byte
	chachaBlock(12, key, nonce, 5, &want)
	is.True(bytes.Equal(dst, want[:]))
}

func Test_ReducedChaChaCipher_MismatchedLengthsPanic(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var key [32]byte
	var nonce [12]byte
	c := newReducedChaChaCipher(8, key, nonce)

	is.Panics(func() {
		c.XORKeyStream(make([]byte, 10), make([]byte, 5))
	})
	is.Panics(func() {
		c.XORKeyStream(make([]byte, 10), make([]byte, 10))
	})
}
