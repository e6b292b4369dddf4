package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates the requested key was not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores raw GraphQL response payloads in Redis. start.gg responses
// carry no cache headers, so every entry gets the same fixed TTL.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

// New creates a new response cache with Redis backend.
func New(redisClient *redis.Client, ttl time.Duration) *Cache {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get retrieves a cached response payload by key.
// Returns ErrCacheMiss if the key doesn't exist.
func (c *Cache) Get(ctx context.Context, key Key) (json.RawMessage, error) {
	data, err := c.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	CacheHits.Inc()
	return json.RawMessage(data), nil
}

// Set stores a response payload under the cache TTL.
func (c *Cache) Set(ctx context.Context, key Key, data json.RawMessage) error {
	if data == nil {
		return fmt.Errorf("cache payload cannot be nil")
	}

	if err := c.redis.Set(ctx, key.String(), []byte(data), c.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a cached response.
func (c *Cache) Delete(ctx context.Context, key Key) error {
	if err := c.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
