package storage

import (
	"sync"
	"time"
)

// MemCache is the fast tier: an in-process TTL map sitting in front of the
// durable store. Entries are whole cached objects; expiry is checked on read.
type MemCache struct {
	mu      sync.RWMutex
	entries map[string]memEntry
}

type memEntry struct {
	value   any
	expires time.Time
}

// NewMemCache creates an empty fast-tier cache.
func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string]memEntry)}
}

// Get returns the cached value for key, or false if absent or expired.
func (c *MemCache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key for the given TTL.
func (c *MemCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = memEntry{value: value, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes key from the cache.
func (c *MemCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of entries, including any not yet swept.
func (c *MemCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
