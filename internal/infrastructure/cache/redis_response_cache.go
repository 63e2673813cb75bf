package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisResponseCache implements ResponseCache using Redis.
// This is suitable for distributed deployments where multiple instances
// should serve the same cached responses.
type RedisResponseCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisResponseCache creates a new Redis-based response cache
func NewRedisResponseCache(cfg RedisConfig) (*RedisResponseCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisResponseCache{
		client:    client,
		keyPrefix: "dms:cache:",
	}, nil
}

// NewRedisResponseCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisResponseCacheWithClient(client *redis.Client, keyPrefix string) *RedisResponseCache {
	if keyPrefix == "" {
		keyPrefix = "dms:cache:"
	}
	return &RedisResponseCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached value for key, false on miss
func (c *RedisResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read from cache: %w", err)
	}
	return value, true, nil
}

// Set stores a value under key with the given TTL
func (c *RedisResponseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// DeleteByPrefix removes all entries whose key starts with prefix.
// Uses SCAN to avoid blocking Redis on large keyspaces.
func (c *RedisResponseCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	pattern := c.keyPrefix + prefix + "*"

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cached keys: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cached keys: %w", err)
		}
	}
	return nil
}

// Close closes the Redis client
func (c *RedisResponseCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisResponseCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisResponseCache implements ResponseCache
var _ ResponseCache = (*RedisResponseCache)(nil)
