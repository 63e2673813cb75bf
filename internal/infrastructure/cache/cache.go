// Package cache provides response caching for read-heavy endpoints.
// The public vehicle catalog is served from cache with a short TTL;
// writes invalidate by key prefix.
package cache

import (
	"context"
	"time"
)

// ResponseCache stores serialized responses under string keys with a TTL
type ResponseCache interface {
	// Get returns the cached value for key. The second return value is
	// false on a cache miss or when the entry has expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value under key with the given TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteByPrefix removes all entries whose key starts with prefix
	DeleteByPrefix(ctx context.Context, prefix string) error
	// Close releases resources held by the cache
	Close() error
}
