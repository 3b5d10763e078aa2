// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import (
	"golang.org/x/crypto/chacha20"
)

const (
	// chachaBaseSize is the number of bytes produced by one Next(dst, 1) call: 16 ChaCha
	// blocks. Keeping it a multiple of chachaBlockSize means every chunk-aligned Seek
	// offset lands exactly on a block boundary, with no partial-block bookkeeping.
	chachaBaseSize = 16 * chachaBlockSize // 1024 bytes

	// chachaChunkFactor yields a 128KiB chunk, within the 64KiB-1MiB range recommended
	// for keeping the consumer fed without holding excessive memory per worker.
	chachaChunkFactor = 128

	// blocksPerEpoch is 2^32: the number of 64-byte blocks a 32-bit block counter can
	// address before it must roll over into a freshly-keyed epoch.
	blocksPerEpoch = uint64(1) << 32
)

// cipherStream is the shape shared by golang.org/x/crypto/chacha20.Cipher and our
// hand-rolled reducedChaChaCipher, letting chaChaGenerator treat all three round counts
// identically.
type cipherStream interface {
	SetCounter(counter uint32)
	XORKeyStream(dst, src []byte)
}

// chaChaGenerator implements Generator for all three ChaCha round counts. It supports the
// full 64-bit byte-offset domain by folding the high bits of the block index into an
// "epoch" that gets a freshly HKDF-derived key and nonce; the low 32 bits become the
// cipher's native block counter. Epoch rollover happens roughly once every 256GiB of
// keystream per worker, so in steady-state operation Seek only ever pays for a SetCounter.
type chaChaGenerator struct {
	rounds int
	seed   []byte

	haveEpoch  bool
	epoch      uint64
	blockIndex uint64
	cipher     cipherStream
}

func newChaChaGenerator(rounds int, perWorkerSeed []byte) *chaChaGenerator {
	return &chaChaGenerator{rounds: rounds, seed: perWorkerSeed}
}

func (g *chaChaGenerator) BaseSize() int    { return chachaBaseSize }
func (g *chaChaGenerator) ChunkFactor() int { return chachaChunkFactor }

func (g *chaChaGenerator) Seek(byteOffset uint64) error {
	if byteOffset%chachaBaseSize != 0 {
		return ErrOffsetMisaligned
	}
	blockIndex := byteOffset / chachaBlockSize
	epoch := blockIndex / blocksPerEpoch
	counter := uint32(blockIndex % blocksPerEpoch)

	if !g.haveEpoch || epoch != g.epoch {
		key, nonce := deriveEpochKeyNonce(g.seed, epoch)
		g.cipher = g.newCipher(key, nonce)
		g.haveEpoch = true
		g.epoch = epoch
	}
	g.cipher.SetCounter(counter)
	g.blockIndex = blockIndex
	return nil
}

func (g *chaChaGenerator) newCipher(key [32]byte, nonce [12]byte) cipherStream {
	if g.rounds == 20 {
		c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
		if err != nil {
			// Only possible if key/nonce lengths are wrong, which they never are here.
			panic("pipeline: chacha20 cipher construction failed: " + err.Error())
		}
		return c
	}
	return newReducedChaChaCipher(g.rounds, key, nonce)
}

func (g *chaChaGenerator) Next(dst []byte, factor int) {
	out := dst[:factor*chachaBaseSize]
	for i := range out {
		out[i] = 0
	}
	for len(out) > 0 {
		if epoch := g.blockIndex / blocksPerEpoch; !g.haveEpoch || epoch != g.epoch {
			key, nonce := deriveEpochKeyNonce(g.seed, epoch)
			g.cipher = g.newCipher(key, nonce)
			g.haveEpoch = true
			g.epoch = epoch
		}
		blocks := min(blocksPerEpoch-g.blockIndex%blocksPerEpoch, uint64(len(out))/chachaBlockSize)
		piece := out[:blocks*chachaBlockSize]
		g.cipher.XORKeyStream(piece, piece)
		g.blockIndex += blocks
		out = out[len(piece):]
	}
}
