package websearch

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/Divas-Gupta30/docflow/internal/graph"
	"github.com/Divas-Gupta30/docflow/internal/metrics"
)

// GoogleSearcher uses the Custom Search JSON API against one search engine id.
type GoogleSearcher struct {
	apiKey     string
	cx         string
	maxResults int
	opts       []option.ClientOption

	mu       sync.Mutex
	services map[string]*customsearch.Service
}

// NewGoogleSearcher builds a searcher for engine cx. Extra client options are
// appended to every service, e.g. option.WithEndpoint.
func NewGoogleSearcher(apiKey, cx string, maxResults int, opts ...option.ClientOption) *GoogleSearcher {
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 3
	}
	return &GoogleSearcher{
		apiKey:     apiKey,
		cx:         cx,
		maxResults: maxResults,
		opts:       opts,
		services:   make(map[string]*customsearch.Service),
	}
}

func (g *GoogleSearcher) Search(ctx context.Context, query, apiKey string) ([]graph.SearchHit, error) {
	key := apiKey
	if key == "" {
		key = g.apiKey
	}
	if key == "" || g.cx == "" {
		return nil, nil
	}

	svc, err := g.service(ctx, key)
	if err != nil {
		return nil, err
	}
	res, err := svc.Cse.List().Q(query).Cx(g.cx).Num(int64(g.maxResults)).Context(ctx).Do()
	metrics.ObserveExternal("google_cse", err)
	if err != nil {
		return nil, fmt.Errorf("custom search: %w", err)
	}

	hits := make([]graph.SearchHit, 0, len(res.Items))
	for _, item := range res.Items {
		if len(hits) == g.maxResults {
			break
		}
		hits = append(hits, graph.SearchHit{Title: item.Title, Snippet: item.Snippet, Link: item.Link})
	}
	return hits, nil
}

func (g *GoogleSearcher) service(ctx context.Context, key string) (*customsearch.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if svc, ok := g.services[key]; ok {
		return svc, nil
	}
	opts := append([]option.ClientOption{option.WithAPIKey(key)}, g.opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create custom search service: %w", err)
	}
	g.services[key] = svc
	return svc, nil
}
