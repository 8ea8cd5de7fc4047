// Package kv defines the device-local key-value store that history and
// session state persist into.
package kv

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyKey is returned when a caller passes a blank key.
var ErrEmptyKey = errors.New("kv: empty key")

// Store is a string-keyed get/set/delete store. Single-key operations are atomic.
// Deleting a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// CheckKey rejects blank keys before they reach a backend.
func CheckKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
