// internal/kv/kv.go
//
// Key-value persistence used by the game record.
// The game is a flat hash plus a few string keys, so the interface mirrors the
// Redis subset the game needs (GET/SET/INCR/DEL and HGET/HSET/HGETALL/HDEL).
//
// Implementations:
//   - memory (this package): map-backed, process-local.
//   - sqlite (this package): kv_strings / kv_hashes tables.
//   - redis  (this package): go-redis client.
//
// None of the implementations offer multi-key transactions; callers apply
// read-modify-write updates one field at a time.

package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a key or hash field does not exist.
	ErrNotFound = errors.New("kv: not found")
	// ErrNotInteger is returned by Incr when the stored value is not an integer.
	ErrNotInteger = errors.New("kv: value is not an integer")
)

// Store defines the key-value operations used by the game state layer.
type Store interface {
	// Get returns the string value at key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Incr increments the integer at key (missing keys start at 0) and
	// returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Del removes string keys and hashes. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error

	// HGet returns one hash field or ErrNotFound.
	HGet(ctx context.Context, key, field string) (string, error)

	// HSet writes the given fields into the hash at key.
	HSet(ctx context.Context, key string, fields map[string]string) error

	// HGetAll returns all fields of the hash at key. A missing hash yields an
	// empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HDel removes hash fields. Missing fields are ignored.
	HDel(ctx context.Context, key string, fields ...string) error

	// Close releases resources owned by the store.
	Close() error
}
