// Package websearch provides the web-search collaborator used by LLM nodes.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/graph"
	"github.com/Divas-Gupta30/docflow/internal/log"
	"github.com/Divas-Gupta30/docflow/internal/metrics"
)

const serpAPIURL = "https://serpapi.com/search.json"

// SerpAPI queries Google through serpapi.com.
type SerpAPI struct {
	apiKey     string
	endpoint   string
	maxResults int
	client     *http.Client
	logger     *zap.Logger
}

type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic_results"`
}

func NewSerpAPI(apiKey string, maxResults int, timeout time.Duration) *SerpAPI {
	if maxResults <= 0 {
		maxResults = 3
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SerpAPI{
		apiKey:     apiKey,
		endpoint:   serpAPIURL,
		maxResults: maxResults,
		client:     &http.Client{Timeout: timeout},
		logger:     log.Component("serpapi"),
	}
}

// Search returns no results, and no error, when neither apiKey nor the
// configured key is set.
func (s *SerpAPI) Search(ctx context.Context, query, apiKey string) ([]graph.SearchHit, error) {
	key := apiKey
	if key == "" {
		key = s.apiKey
	}
	if key == "" {
		s.logger.Info("no SerpAPI key configured, skipping web search")
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", key)
	params.Set("engine", "google")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ObserveExternal("serpapi", err)
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("serpapi request failed with status: %s", resp.Status)
		metrics.ObserveExternal("serpapi", err)
		return nil, err
	}

	var body serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.ObserveExternal("serpapi", err)
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	metrics.ObserveExternal("serpapi", nil)

	hits := make([]graph.SearchHit, 0, s.maxResults)
	for _, r := range body.OrganicResults {
		if len(hits) == s.maxResults {
			break
		}
		hits = append(hits, graph.SearchHit{Title: r.Title, Snippet: r.Snippet, Link: r.Link})
	}
	s.logger.Debug("web search done", zap.Int("results", len(body.OrganicResults)))
	return hits, nil
}
