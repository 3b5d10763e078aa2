package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// randomSeedBytes is the length of a generated run seed. 32 bytes gives the HKDF-based worker
// key derivation (see pipeline/kdf.go) as much entropy as its SHA-256 extract step can use.
const randomSeedBytes = 32

// generateRandomSeed mints a fresh seed from the operating system's CSPRNG and hex-encodes it,
// so it can be both passed as --seed text and read off a terminal by a human.
func generateRandomSeed() (string, error) {
	buf := make([]byte, randomSeedBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("disktest: generating random seed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
