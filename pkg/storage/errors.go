package storage

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrNotFound is returned when no entry exists for an ID.
	ErrNotFound = errors.New("result not found")

	// ErrConflict is returned when an entry with the given ID already exists.
	ErrConflict = errors.New("result already exists")
)
