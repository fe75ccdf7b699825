// Package kv implements the device-local key-value storage domain backed by
// SQLite. It holds, among other things, the serialized vault entry list and
// the raw cipher key bytes; both deliberately live in the same store (see
// DESIGN.md).
package kv

import "context"

// Repository is a flat byte-value store addressed by string keys.
type Repository interface {
	// Get returns the value for key, or nil if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
