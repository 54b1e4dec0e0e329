package ports

import (
	"context"
	"errors"
)

// ErrStoreUnavailable marks failures where the key-value store could not be
// reached at all (connection refused, pool exhausted, circuit open). Drivers
// wrap transport failures with it; every other error is an operation failure.
var ErrStoreUnavailable = errors.New("key-value store unavailable")

// KeyValueStore is the subset of a Redis-like store the gateway relies on.
// Each call is independent; no implementation offers atomicity across calls.
type KeyValueStore interface {
	// HSet sets a single field of the hash at key, creating the hash if needed.
	HSet(ctx context.Context, key, field, value string) error

	// HGet reads a single hash field. found is false when the key or the field
	// does not exist; that is not an error.
	HGet(ctx context.Context, key, field string) (value string, found bool, err error)

	// Del removes key regardless of its type. Removing a missing key succeeds.
	Del(ctx context.Context, key string) error

	// RPush appends values to the list at key in order, creating it if needed.
	RPush(ctx context.Context, key string, values ...string) error

	// LRange returns the whole list at key. A missing key yields an empty slice.
	LRange(ctx context.Context, key string) ([]string, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}
