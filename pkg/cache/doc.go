// Package cache provides optional Redis-backed caching of start.gg GraphQL
// responses.
//
// Repeated ingestion runs re-issue the same queries against the same mostly
// historical data, so caching the raw data payload of each successful query
// saves a large share of the request budget. GraphQL responses carry no
// ETag or expires metadata, so every entry gets one fixed TTL.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache
//	responseCache := cache.New(redisClient, 10*time.Minute)
//
//	// Create cache key
//	key := cache.Key{
//		Operation: "participants",
//		Variables: map[string]any{"id": "12345", "page": 2, "perPage": 60},
//	}
//
//	// Get from cache
//	data, err := responseCache.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from start.gg
//	}
//
// # Metrics
//
// The cache exports Prometheus metrics:
//
//   - startgg_cache_hits_total - Cache hits
//   - startgg_cache_misses_total - Cache misses
//   - startgg_cache_errors_total{operation} - Cache operation errors
package cache
