// Package kv defines the record store abstraction backing all compliance
// entities, plus its Redis, MySQL and in-memory implementations.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists at the key.
var ErrNotFound = errors.New("kv: key not found")

// Store is a simple key-value backend with an additional list structure used
// for the audit trail. Writes are last-write-wins; only single-key operations
// are atomic.
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key, overwriting any prior value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the value at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all values whose key starts with prefix.
	List(ctx context.Context, prefix string) ([][]byte, error)

	// Keys returns all keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// DeleteByPrefix removes every key starting with prefix and reports how
	// many were removed.
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)

	// Push inserts value at the head of the list stored at listKey.
	Push(ctx context.Context, listKey string, value []byte) error

	// Range returns list elements from start to stop inclusive, head first.
	// A stop of -1 means the tail of the list.
	Range(ctx context.Context, listKey string, start, stop int64) ([][]byte, error)

	// Trim discards list elements beyond the first max entries.
	Trim(ctx context.Context, listKey string, max int64) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying client resources.
	Close() error
}
