// Package store persists the garage state locally. Every implementation
// keeps the whole fleet under a single key, mirroring the one-blob layout
// the garage has always used; there are no transactional guarantees beyond
// best effort.
package store

import "errors"

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("no saved garage state")

// Store defines the interface for garage persistence operations.
type Store interface {
	// Load decodes the saved blob into out, or returns ErrNotFound.
	Load(out interface{}) error
	// Save encodes value and overwrites the saved blob.
	Save(value interface{}) error
}
