// Package store provides the keyed byte store backing account records and
// the user primary-key counter, modeled on a generic key/value database
// interface rather than a bespoke schema.
package store

import "context"

// Store is a generic keyed byte store: callers marshal their own values.
// It mirrors a DBM-style get/put interface rather than exposing any
// account-specific shape, so the persistence layer stays decoupled from
// the account record format.
type Store interface {
	// Put stores value under key, overwriting any existing value.
	Put(ctx context.Context, key string, value []byte) error

	// Get retrieves the value stored under key. ok is false if key is unset.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Delete removes key. It is not an error if key was never set.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources (file handles, connections).
	Close() error
}

// PKKey is the fixed key under which the monotonic user primary-key
// counter is persisted, alongside ordinary account records.
const PKKey = "USER_PK"
