// Package memory provides the in-memory storage.ResultCache. Entries live
// for the lifetime of the process. The cache is unbounded by default; a
// positive maximum size enables LRU eviction.
package memory

import (
	"container/list"
	"context"
	"sync"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/storage"
)

type entry struct {
	value   *api.CacheEntry
	lruElem *list.Element
}

// Cache is an in-memory ResultCache with optional LRU eviction.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	lruList *list.List // front = most recently used
	maxSize int        // 0 = unlimited
}

// Ensure Cache implements storage.ResultCache at compile time.
var _ storage.ResultCache = (*Cache)(nil)

// New creates a new in-memory cache. If maxSize is 0, the cache grows
// without limit. If maxSize > 0, the least recently used entry is evicted
// when the limit is reached.
func New(maxSize int) *Cache {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Cache{
		entries: make(map[string]*entry),
		lruList: list.New(),
		maxSize: maxSize,
	}
}

// Put stores a copy of the entry.
func (c *Cache) Put(_ context.Context, e *api.CacheEntry) error {
	value := e.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[value.ID]; exists {
		return storage.ErrConflict
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.lruList.PushFront(value.ID)
	c.entries[value.ID] = &entry{value: value, lruElem: elem}
	return nil
}

// Get returns a copy of the entry stored under id.
func (c *Cache) Get(_ context.Context, id string) (*api.CacheEntry, error) {
	// Write lock: a hit moves the entry to the LRU front.
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c.lruList.MoveToFront(e.lruElem)
	return e.value.Clone(), nil
}

// Len returns the number of cached entries.
func (c *Cache) Len(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// HealthCheck always returns nil for the in-memory cache.
func (c *Cache) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory cache.
func (c *Cache) Close() error {
	return nil
}

// evictOldest removes the least recently used entry. Caller must hold c.mu.
func (c *Cache) evictOldest() {
	back := c.lruList.Back()
	if back == nil {
		return
	}
	id := back.Value.(string)
	c.lruList.Remove(back)
	delete(c.entries, id)
}
