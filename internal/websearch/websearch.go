package websearch

import (
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/Divas-Gupta30/docflow/internal/config"
	"github.com/Divas-Gupta30/docflow/internal/graph"
)

// New builds the configured searcher, wrapped in a Redis cache when rdb is
// non-nil. Provider "none" yields a nil searcher, which disables escalation.
func New(cfg config.WebSearchConfig, rdb redis.Cmdable) (graph.WebSearcher, error) {
	var s graph.WebSearcher
	switch strings.ToLower(cfg.Provider) {
	case "", "serpapi":
		s = NewSerpAPI(cfg.APIKey, cfg.MaxResults, cfg.Timeout)
	case "google":
		s = NewGoogleSearcher(cfg.APIKey, cfg.CSEID, cfg.MaxResults)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown web search provider %q", cfg.Provider)
	}
	if rdb != nil {
		s = NewCached(s, NewRedisCache(rdb, cfg.CacheTTL))
	}
	return s, nil
}
