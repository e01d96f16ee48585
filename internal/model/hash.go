package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// DigestSize is the byte length of content hashes, subject digests and transaction hashes.
const DigestSize = 32

// ContentDigest returns the normalized hex SHA-256 of artifact bytes.
func ContentDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SubjectDigest derives the one-way digest registered on the ledger instead of the raw subject reference.
func SubjectDigest(subjectReference string) string {
	return hex.EncodeToString(crypto.Keccak256([]byte(subjectReference)))
}

// NormalizeHash lowercases a hex digest and strips an optional 0x prefix.
func NormalizeHash(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.TrimPrefix(value, "0x")
}

// ParseDigest normalizes value and checks it is a 32-byte hex digest.
func ParseDigest(value string) (string, error) {
	normalized := NormalizeHash(value)
	if len(normalized) != DigestSize*2 {
		return "", fmt.Errorf("%w: digest %q must be %d hex characters", ErrInvalidInput, value, DigestSize*2)
	}
	if _, err := hex.DecodeString(normalized); err != nil {
		return "", fmt.Errorf("%w: digest %q is not hex", ErrInvalidInput, value)
	}
	return normalized, nil
}

// DigestBytes converts a normalized digest to its fixed-size form.
func DigestBytes(value string) ([DigestSize]byte, error) {
	var out [DigestSize]byte
	normalized, err := ParseDigest(value)
	if err != nil {
		return out, err
	}
	raw, _ := hex.DecodeString(normalized)
	copy(out[:], raw)
	return out, nil
}

// SameIdentity compares issuer identities case-insensitively, ignoring a 0x prefix.
func SameIdentity(a, b string) bool {
	return NormalizeHash(a) == NormalizeHash(b)
}
