// Package cache holds oracle verdicts in process memory so repeated units cost one query.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

// Key generates a cache key for a unit's text. Surrounding whitespace does not
// change the query, so it does not change the key either.
func Key(text string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return "originality:v1:" + hex.EncodeToString(hash[:])
}

// EncodeVerdict stores a plagiarised flag as a single byte
func EncodeVerdict(plagiarised bool) []byte {
	if plagiarised {
		return []byte{1}
	}
	return []byte{0}
}

// DecodeVerdict reverses EncodeVerdict. ok is false for malformed entries.
func DecodeVerdict(b []byte) (plagiarised bool, ok bool) {
	if len(b) != 1 || b[0] > 1 {
		return false, false
	}
	return b[0] == 1, true
}
