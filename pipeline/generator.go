// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import "fmt"

// GeneratorType selects one of the four keystream algorithms a Worker can run.
type GeneratorType int

const (
	// GeneratorChaCha8 is the ChaCha stream cipher reduced to 8 rounds.
	GeneratorChaCha8 GeneratorType = iota
	// GeneratorChaCha12 is the ChaCha stream cipher reduced to 12 rounds.
	GeneratorChaCha12
	// GeneratorChaCha20 is the full 20-round ChaCha stream cipher.
	GeneratorChaCha20
	// GeneratorCRC is a CRC32-based pseudo-random generator, used as a cheap, non-
	// cryptographic alternative to the cipher-based generators.
	GeneratorCRC
)

// String returns the generator type's canonical name, as used on the command line.
func (t GeneratorType) String() string {
	switch t {
	case GeneratorChaCha8:
		return "chacha8"
	case GeneratorChaCha12:
		return "chacha12"
	case GeneratorChaCha20:
		return "chacha20"
	case GeneratorCRC:
		return "crc"
	default:
		return fmt.Sprintf("GeneratorType(%d)", int(t))
	}
}

// ParseGeneratorType parses the canonical name produced by GeneratorType.String.
func ParseGeneratorType(s string) (GeneratorType, error) {
	switch s {
	case "chacha8":
		return GeneratorChaCha8, nil
	case "chacha12":
		return GeneratorChaCha12, nil
	case "chacha20":
		return GeneratorChaCha20, nil
	case "crc":
		return GeneratorCRC, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownGeneratorType, s)
	}
}

// Generator is a seekable, deterministic keystream source keyed by a per-worker seed.
//
// For any offset that is a multiple of BaseSize, Seek(offset) followed by Next(dst, k)
// must yield the same bytes as producing the stream from offset 0 and discarding the first
// offset bytes. Implementations must make Seek O(1) or near-O(1); it is called once per
// worker activation, which itself happens on every write/verify invocation.
type Generator interface {
	// BaseSize is the number of bytes produced by one Next call with factor == 1.
	BaseSize() int
	// ChunkFactor is the number of base blocks that make up one chunk.
	ChunkFactor() int
	// Seek positions the generator so the next Next call returns the bytes starting at
	// byteOffset in the generator's infinite keystream. byteOffset must be a multiple of
	// BaseSize.
	Seek(byteOffset uint64) error
	// Next fills dst[:factor*BaseSize] with fresh keystream bytes and advances the
	// generator's position by that many bytes. The caller guarantees len(dst) is at
	// least factor*BaseSize.
	Next(dst []byte, factor int)
}

// generatorConstants returns a generator type's (BaseSize, ChunkFactor) without having to
// construct a keyed Generator instance just to read them.
func generatorConstants(t GeneratorType) (baseSize, chunkFactor int) {
	switch t {
	case GeneratorChaCha8, GeneratorChaCha12, GeneratorChaCha20:
		return chachaBaseSize, chachaChunkFactor
	case GeneratorCRC:
		return crcBaseSize, crcChunkFactor
	default:
		return 0, 0
	}
}

// newGenerator constructs the Generator for the given type, keyed by perWorkerSeed.
func newGenerator(t GeneratorType, perWorkerSeed []byte) (Generator, error) {
	switch t {
	case GeneratorChaCha8:
		return newChaChaGenerator(8, perWorkerSeed), nil
	case GeneratorChaCha12:
		return newChaChaGenerator(12, perWorkerSeed), nil
	case GeneratorChaCha20:
		return newChaChaGenerator(20, perWorkerSeed), nil
	case GeneratorCRC:
		return newCRCGenerator(perWorkerSeed), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownGeneratorType, int(t))
	}
}
