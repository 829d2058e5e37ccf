// Package cache stores fetched asset bytes between renders.
//
// Backgrounds and overlays are shared by every order, so the asset fetcher
// keeps their bytes in a [Cache] keyed by [AssetKey]. Four backends exist:
//
//   - [NullCache]: caching disabled
//   - [MemoryCache]: in-process, backed by patrickmn/go-cache
//   - [FileCache]: on-disk, for the CLI
//   - [RedisCache]: shared between service replicas
//
// A cache miss is (nil, false, nil); errors are reserved for backend
// failures, which callers treat as misses.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/herobook/pkg/errors"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by New.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Options configures New.
type Options struct {
	Backend string
	Dir     string // file backend
	TTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New builds the cache selected by opts.Backend. An empty backend disables
// caching.
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendMemory:
		return NewMemoryCache(opts.TTL), nil
	case BackendFile:
		fc, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendRedis:
		return NewRedisCache(opts.RedisAddr, opts.RedisPassword, opts.RedisDB), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", opts.Backend)
}
