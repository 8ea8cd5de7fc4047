package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeyDigest returns the hex sha256 of key. Usernames end up inside kv keys,
// so storage backends that expose names use the digest instead.
func KeyDigest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// ObjectName is the digest-based file name for a kv key.
func ObjectName(key, ext string) string {
	return KeyDigest(key) + ext
}
