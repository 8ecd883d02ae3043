package storage

import (
	"context"

	"github.com/rhuss/procunit/pkg/api"
)

// ResultCache maps result IDs to cached result payloads.
//
// Put must be atomic with respect to concurrent Get calls: a reader sees
// either no entry or the fully populated entry. Entries are immutable
// once stored. Implementations must be safe for concurrent use.
type ResultCache interface {
	// Put stores an entry. Returns ErrConflict if the ID already exists.
	Put(ctx context.Context, entry *api.CacheEntry) error

	// Get retrieves an entry by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*api.CacheEntry, error)

	// Len returns the number of cached entries.
	Len(ctx context.Context) (int, error)

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases connections and resources.
	Close() error
}
