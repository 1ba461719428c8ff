package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ledger/backend/internal/domain/shared"
)

// MemoryCache is an in-process implementation of shared.Cache with lazy TTL
// expiry. Suitable for tests and single-instance deployments.
// WARNING: entries are not shared across process instances.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
	nowFunc func() time.Time
}

type memoryCacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryCacheEntry),
		nowFunc: time.Now,
	}
}

// Get returns the cached value and whether the key was present and unexpired
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if c.nowFunc().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

// Set stores the value under key for the given TTL
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = memoryCacheEntry{
		value:     stored,
		expiresAt: c.nowFunc().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// Invalidate removes the given keys
func (c *MemoryCache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries currently held, including expired ones
// not yet swept
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure MemoryCache implements Cache
var _ shared.Cache = (*MemoryCache)(nil)
