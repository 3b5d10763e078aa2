// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"
)

// workerSeedSize is the length, in bytes, of the per-worker seed derived from the caller's
// seed. It is large enough to serve as HKDF input key material for every generator epoch
// derivation a worker will ever need.
const workerSeedSize = 32

// deriveWorkerSeed turns (seed, workerID) into a per-worker seed. It is a pure function:
// for a fixed (seed, workerID), it always returns the same bytes, with no hidden state and
// no randomness. Different worker IDs under the same seed produce independent-looking
// output by construction (HKDF's info parameter binds the derivation to the worker ID).
func deriveWorkerSeed(seed []byte, workerID uint32) []byte {
	info := make([]byte, 4)
	binary.BigEndian.PutUint32(info, workerID)

	r := hkdf.New(sha256.New, seed, nil, info)
	out := make([]byte, workerSeedSize)
	if _, err := io.ReadFull(r, out); err != nil {
		// HKDF-SHA256 can only fail this way if the requested output exceeds
		// 255*hash.Size, which workerSeedSize never approaches.
		panic("pipeline: hkdf expansion failed: " + err.Error())
	}
	return out
}

// deriveEpochKeyNonce derives a ChaCha key and nonce for one "epoch" of a worker's
// keystream. An epoch covers 2^32 ChaCha blocks (2^38 bytes); Generator implementations
// rekey into a fresh epoch whenever a seek or a generation step crosses that boundary, which lets a 32-bit block
// counter address the full 64-bit byte-offset domain required by the generator contract.
func deriveEpochKeyNonce(perWorkerSeed []byte, epoch uint64) (key [32]byte, nonce [12]byte) {
	info := make([]byte, 8)
	binary.BigEndian.PutUint64(info, epoch)

	r := hkdf.New(sha256.New, perWorkerSeed, nil, info)
	var out [44]byte
	if _, err := io.ReadFull(r, out[:]); err != nil {
		panic("pipeline: hkdf expansion failed: " + err.Error())
	}
	copy(key[:], out[:32])
	copy(nonce[:], out[32:44])
	return key, nonce
}
