package chain

import (
	"sync"
	"time"
)

// metadataCache caches immutable token metadata (symbol, name, decimals)
// so repeated balance lookups don't refetch it from the chain.
type metadataCache struct {
	entries map[string]*metadataEntry
	maxSize int
	ttl     time.Duration
	mu      sync.RWMutex
}

type metadataEntry struct {
	value      TokenMetadata
	createdAt  time.Time
	accessedAt time.Time
}

func newMetadataCache(maxSize int, ttl time.Duration) *metadataCache {
	return &metadataCache{
		entries: make(map[string]*metadataEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func (c *metadataCache) get(key string) (TokenMetadata, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return TokenMetadata{}, false
	}

	if time.Since(entry.createdAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return TokenMetadata{}, false
	}

	c.mu.Lock()
	entry.accessedAt = time.Now()
	c.mu.Unlock()

	return entry.value, true
}

func (c *metadataCache) set(key string, value TokenMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evict()
	}

	c.entries[key] = &metadataEntry{
		value:      value,
		createdAt:  time.Now(),
		accessedAt: time.Now(),
	}
}

// evict removes the least recently used entry
func (c *metadataCache) evict() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.accessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.accessedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *metadataCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
