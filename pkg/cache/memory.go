package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/matzehuels/herobook/pkg/observability"
)

const memoryCleanupInterval = 10 * time.Minute

// MemoryCache keeps entries in process memory. It is safe for concurrent
// use and suited to the long-running HTTP service.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries expire after
// defaultTTL unless Set is given a TTL of its own. A defaultTTL of 0 keeps
// entries until the process exits.
func NewMemoryCache(defaultTTL time.Duration) Cache {
	exp := defaultTTL
	if exp <= 0 {
		exp = gocache.NoExpiration
	}
	return &MemoryCache{store: gocache.New(exp, memoryCleanupInterval)}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := c.store.Get(key)
	if !ok {
		observability.Cache().OnCacheMiss(ctx, BackendMemory)
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, BackendMemory)
	return v.([]byte), true, nil
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	exp := gocache.DefaultExpiration
	if ttl > 0 {
		exp = ttl
	}
	c.store.Set(key, data, exp)
	observability.Cache().OnCacheSet(ctx, BackendMemory, len(data))
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.store.Flush()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
