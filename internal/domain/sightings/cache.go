// Package sightings implements the idempotency layer that maps external
// place identifiers to the brand they resolved to.
package sightings

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Cache records place-id → brand links. A link is written exactly once
// and never moves to a different brand afterwards; a given physical
// location cannot silently change identity.
type Cache interface {
	// Lookup returns the linked brand id for placeID, if one exists.
	Lookup(ctx context.Context, placeID string) (uuid.UUID, bool)

	// Record links placeID to brandID. The first write wins: recording
	// an already-linked place id is a no-op and returns false.
	Record(ctx context.Context, placeID string, brandID uuid.UUID) bool

	// Forget removes a link. This is a compensation hook for the case
	// where a place id was recorded but the surrounding resolution
	// failed to persist; it must not be used to re-home a location.
	Forget(ctx context.Context, placeID string)

	Size() int64
}

// Option applies a configuration option to the in-memory cache.
type Option func(*inMemoryCache)

// WithInitialCapacity pre-sizes the link table.
func WithInitialCapacity(n int) Option {
	return func(c *inMemoryCache) {
		if n > 0 {
			c.initialCapacity = n
		}
	}
}

// inMemoryCache implements Cache with a mutex-guarded map. Links are
// deliberately not evicted: evicting one would let a duplicate sighting
// re-run matching and possibly attach the same physical store to a
// second brand.
type inMemoryCache struct {
	mu              sync.RWMutex
	links           map[string]uuid.UUID
	initialCapacity int
	size            atomic.Int64
}

// NewInMemoryCache creates an in-memory sighting cache.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		initialCapacity: 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.links = make(map[string]uuid.UUID, c.initialCapacity)
	return c
}

func (c *inMemoryCache) Lookup(_ context.Context, placeID string) (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.links[placeID]
	return id, ok
}

func (c *inMemoryCache) Record(_ context.Context, placeID string, brandID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.links[placeID]; exists {
		return false
	}
	c.links[placeID] = brandID
	c.size.Add(1)
	return true
}

func (c *inMemoryCache) Forget(_ context.Context, placeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.links[placeID]; exists {
		delete(c.links, placeID)
		c.size.Add(-1)
	}
}

func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}
