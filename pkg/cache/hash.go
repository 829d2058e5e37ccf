package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// AssetKey returns the cache key for an asset reference (URL or path).
func AssetKey(ref string) string {
	return "asset:" + Hash([]byte(ref))
}
