package graph

import "context"

// Passage is one retrieved document chunk, most similar first.
type Passage struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Distance float64        `json:"distance"`
}

// Retriever finds up to k passages similar to text.
type Retriever interface {
	QuerySimilar(ctx context.Context, text string, k int) ([]Passage, error)
}

type GenerateRequest struct {
	Prompt      string
	Model       string
	Temperature float64
	// APIKey overrides the provider's configured key when set.
	APIKey string
}

// Generator is the LLM collaborator.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

type SearchHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// WebSearcher returns web results for query. A missing key yields no
// results rather than an error.
type WebSearcher interface {
	Search(ctx context.Context, query, apiKey string) ([]SearchHit, error)
}

// Summarizer renders a session's recent conversation for prompts.
type Summarizer interface {
	Summary(ctx context.Context, sessionID string) string
}
