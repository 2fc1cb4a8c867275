// Package querycache provides a time-bounded memo for list queries. Entries
// are keyed by (entity kind, filter parameters) and expire after a short TTL;
// any write anywhere clears the whole cache, because treatment enrichment
// reads across entity kinds and partial invalidation would serve stale
// aggregates.
package querycache

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL bounds how stale an unwritten-to view may be.
const DefaultTTL = 10 * time.Second

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a thread-safe in-memory memo with lazy expiration.
type Cache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Cache with the given TTL. A non-positive ttl falls back to
// DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Key builds a cache key from an entity kind and its filter parameters.
func Key(kind string, params ...string) string {
	return kind + "?" + strings.Join(params, "&")
}

// Get returns the cached value for key if present and unexpired. Expired
// entries are deleted on access.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key with the cache's TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// InvalidateAll removes every entry. Services call this synchronously on
// every write, so a read immediately after a write never observes pre-write
// data.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of live entries, expired or not. Intended for tests
// and diagnostics.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Through returns the cached value for key, or runs fetch, stores its result,
// and returns it. A nil cache is a pass-through.
func Through[T any](c *Cache, key string, fetch func() (T, error)) (T, error) {
	if c == nil {
		return fetch()
	}
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}
