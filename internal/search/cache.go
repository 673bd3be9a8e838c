package search

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"webseek/pkg/config"
	pkgredis "webseek/pkg/redis"
)

const cacheKeyPrefix = "search:"

// QueryCache caches ranked result lists in Redis keyed by the normalized
// query. Concurrent identical queries are collapsed through singleflight so
// the engine computes each missing entry once.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewQueryCache builds a QueryCache over an established Redis client.
func NewQueryCache(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached results for the query, if present.
func (c *QueryCache) Get(ctx context.Context, query string) ([]Result, bool) {
	key := c.buildKey(query)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var results []Result
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return results, true
}

// Set stores the results for the query with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, query string, results []Result) {
	key := c.buildKey(query)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached results or computes and caches them,
// reporting whether the value came from the cache.
func (c *QueryCache) GetOrCompute(ctx context.Context, query string, computeFn func() []Result) ([]Result, bool) {
	if results, ok := c.Get(ctx, query); ok {
		return results, true
	}
	key := c.buildKey(query)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.Get(ctx, query); ok {
			return results, nil
		}
		results := computeFn()
		c.Set(ctx, query, results)
		return results, nil
	})
	return val.([]Result), false
}

// Invalidate removes every cached query result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the cumulative hit and miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string) string {
	terms := tokenizeQuery(query)
	sort.Strings(terms)
	hash := sha256.Sum256([]byte(strings.Join(terms, ",")))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash[:16])
}
