package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/graph"
	"github.com/Divas-Gupta30/docflow/internal/log"
	"github.com/Divas-Gupta30/docflow/internal/metrics"
)

var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]graph.SearchHit, error)
	Set(ctx context.Context, key string, hits []graph.SearchHit) error
}

// RedisCache stores result sets as JSON strings with a fixed ttl.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]graph.SearchHit, error) {
	data, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var hits []graph.SearchHit
	if err := json.Unmarshal([]byte(data), &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, hits []graph.SearchHit) error {
	b, err := json.Marshal(hits)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, c.ttl).Err()
}

// Cached serves repeated queries from a Cache. Cache failures fall through to
// the wrapped searcher; empty result sets are not cached.
type Cached struct {
	next   graph.WebSearcher
	cache  Cache
	logger *zap.Logger
}

func NewCached(next graph.WebSearcher, cache Cache) *Cached {
	return &Cached{next: next, cache: cache, logger: log.Component("websearch-cache")}
}

func (c *Cached) Search(ctx context.Context, query, apiKey string) ([]graph.SearchHit, error) {
	key := cacheKey(query)
	hits, err := c.cache.Get(ctx, key)
	if err == nil {
		metrics.CacheHitsTotal.Inc()
		return hits, nil
	}
	metrics.CacheMissesTotal.Inc()
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("web search cache read failed", zap.Error(err))
	}

	hits, err = c.next.Search(ctx, query, apiKey)
	if err != nil || len(hits) == 0 {
		return hits, err
	}
	if err := c.cache.Set(ctx, key, hits); err != nil {
		c.logger.Warn("failed to cache web search results", zap.Error(err))
	}
	return hits, nil
}

func cacheKey(query string) string {
	return "websearch:" + strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
