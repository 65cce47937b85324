package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey returns the hex SHA-256 of key. Property keys and OAuth states are
// stored hashed so arbitrary CMS keys yield fixed-size cache keys.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}
