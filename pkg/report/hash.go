package report

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest computes the SHA-256 hash over the exact content bytes and returns
// it hex-encoded. The full payload is hashed, never a prefix: the digest is
// the stable identity of the content, and two payloads differing only past
// some cutoff must not collide. Intake bounds payload size, so hashing
// everything stays cheap.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
