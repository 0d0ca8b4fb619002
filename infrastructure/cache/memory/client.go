// ABOUTME: In-memory TTL store backed by patrickmn/go-cache
// ABOUTME: Suits single-process runs where cool-downs need not outlive the process

package memory

import (
	"context"
	"time"

	"digests-ingest/core/errors"
	gocache "github.com/patrickmn/go-cache"
)

const defaultCleanupInterval = 5 * time.Minute

// MemoryCache implements the Cache interface using in-memory storage
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a new in-memory cache instance
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithCleanup(defaultCleanupInterval)
}

// NewMemoryCacheWithCleanup sets how often expired items are purged
func NewMemoryCacheWithCleanup(interval time.Duration) *MemoryCache {
	return &MemoryCache{
		items: gocache.New(gocache.NoExpiration, interval),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, ok := c.items.Get(key)
	if !ok {
		return nil, &errors.NotFoundError{Resource: "cache key", ID: key}
	}

	// Return a copy of the value
	stored := value.([]byte)
	result := make([]byte, len(stored))
	copy(result, stored)
	return result, nil
}

// Set stores a value in the cache with the given TTL. A zero TTL never expires.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.items.Set(key, valueCopy, ttl)
	return nil
}

// Delete removes a key from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.items.Delete(key)
	return nil
}

// TTL returns the remaining lifetime of key, 0 for keys without expiry
func (c *MemoryCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	_, expiration, ok := c.items.GetWithExpiration(key)
	if !ok {
		return 0, &errors.NotFoundError{Resource: "cache key", ID: key}
	}
	if expiration.IsZero() {
		return 0, nil
	}

	remaining := time.Until(expiration)
	if remaining <= 0 {
		return 0, &errors.NotFoundError{Resource: "cache key", ID: key}
	}
	return remaining, nil
}

// Len returns the number of stored items, expired ones included until cleanup
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
