package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// cacheEntry represents a stored value with expiration
type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryResponseCache implements ResponseCache using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryResponseCache struct {
	mu        sync.RWMutex
	entries   map[string]cacheEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryResponseCache creates a new in-memory response cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryResponseCache() *InMemoryResponseCache {
	cache := &InMemoryResponseCache{
		entries:  make(map[string]cacheEntry),
		stopChan: make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached value for key, false on miss or expiry
func (c *InMemoryResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		return nil, false, nil // Expired, treat as miss
	}

	return e.value, true, nil
}

// Set stores a value under key with the given TTL
func (c *InMemoryResponseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Copy so later mutations of the caller's slice cannot corrupt the cache
	stored := make([]byte, len(value))
	copy(stored, value)

	c.entries[key] = cacheEntry{
		value:     stored,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// DeleteByPrefix removes all entries whose key starts with prefix
func (c *InMemoryResponseCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (c *InMemoryResponseCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryResponseCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryResponseCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryResponseCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryResponseCache implements ResponseCache
var _ ResponseCache = (*InMemoryResponseCache)(nil)
