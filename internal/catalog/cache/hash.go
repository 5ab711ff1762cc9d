package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint hashes an ordered sequence of (name, content) pairs. The
// same inputs in the same order always produce the same value.
func Fingerprint(pairs ...[2]string) string {
	hasher := sha256.New()
	for _, p := range pairs {
		hasher.Write([]byte(p[0]))
		hasher.Write([]byte{0})
		hasher.Write([]byte(p[1]))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
