package geocode

import (
	"context"
	"sync"
	"time"
)

// Cache stores geocoding results keyed by normalized address.
type Cache interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Set(ctx context.Context, key string, result Result, ttl time.Duration) error
}

type memoryEntry struct {
	result    Result
	expiresAt time.Time
}

// MemoryCache is the per-process cache used when no Redis address is configured.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries results.
// Once full, expired entries are purged; if none have expired the new
// result is not stored.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Result, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		return Result{}, false, nil
	}
	return entry.result, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, result Result, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		for k, e := range c.entries {
			if !now.Before(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= c.maxEntries {
			return nil
		}
	}

	c.entries[key] = memoryEntry{result: result, expiresAt: now.Add(ttl)}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
