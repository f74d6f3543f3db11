// Package cache provides a small in-memory TTL cache used for
// expensive read-side reports.
package cache

import (
	"sync"
	"time"
)

type item[T any] struct {
	value   T
	expires int64 // unix nanos
}

// InMemory is a thread-safe in-memory cache with a fixed TTL per cache.
type InMemory[T any] struct {
	mu    sync.RWMutex
	items map[string]item[T]
	ttl   time.Duration
}

// New creates a cache whose entries live for ttl. A background sweeper
// reclaims expired entries so long-lived caches don't grow unbounded.
func New[T any](ttl time.Duration) *InMemory[T] {
	c := &InMemory[T]{
		items: make(map[string]item[T]),
		ttl:   ttl,
	}
	go c.sweep()
	return c
}

// Get retrieves a value. Expired entries read as misses even before
// the sweeper reclaims them.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || time.Now().UnixNano() > it.expires {
		var zero T
		return zero, false
	}
	return it.value, true
}

// Set stores a value, resetting its TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item[T]{
		value:   value,
		expires: time.Now().Add(c.ttl).UnixNano(),
	}
}

// Delete removes a value. Used to invalidate stale reports after a
// mutation rather than waiting out the TTL.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

func (c *InMemory[T]) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now().UnixNano()
		c.mu.Lock()
		for k, it := range c.items {
			if now > it.expires {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}
