package cache

import (
	"fmt"

	"github.com/dms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ResponseCacheFactory creates response caches based on configuration
type ResponseCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ResponseCacheFactoryOption is a functional option for configuring the factory
type ResponseCacheFactoryOption func(*ResponseCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ResponseCacheFactoryOption {
	return func(f *ResponseCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) ResponseCacheFactoryOption {
	return func(f *ResponseCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewResponseCacheFactory creates a new factory
func NewResponseCacheFactory(cfg config.RedisConfig, opts ...ResponseCacheFactoryOption) *ResponseCacheFactory {
	f := &ResponseCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based response cache
func (f *ResponseCacheFactory) CreateRedisCache() (ResponseCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisResponseCache(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis response cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory response cache.
// Suitable for single-instance deployments and testing.
func (f *ResponseCacheFactory) CreateInMemoryCache() ResponseCache {
	return NewInMemoryResponseCache()
}

// CreateCache creates a response cache based on whether Redis is available.
// It tries Redis first and falls back to in-memory if Redis is not reachable
// and the fallback is allowed.
func (f *ResponseCacheFactory) CreateCache() (ResponseCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis response cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for response cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory response cache. "+
		"Cached responses will not be shared across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
