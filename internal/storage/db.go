// Package storage persists wallet state between sessions: account
// metadata and application settings, namespaced per network. Seed
// phrases and key material are never written here.
package storage

import "errors"

// ErrKeyNotFound is returned by Get for keys that do not exist.
var ErrKeyNotFound = errors.New("key not found")

// DB is the key-value store behind the wallet's persistence.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}
