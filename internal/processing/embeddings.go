package processing

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/Divas-Gupta30/docflow/internal/metrics"
)

// EmbeddingDim is the dimension of nomic-embed-text vectors.
const EmbeddingDim = 768

var ErrEmptyInput = errors.New("nothing to embed")

// Embedder turns text into vectors of a fixed dimension.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbedder embeds through a local Ollama server and rejects vectors
// whose dimension does not match the vector store column.
type OllamaEmbedder struct {
	inner embeddings.Embedder
	dim   int
}

func NewOllamaEmbedder(serverURL, model string, dim int) (*OllamaEmbedder, error) {
	if model == "" {
		model = "nomic-embed-text"
	}
	client, err := ollama.New(ollama.WithServerURL(serverURL), ollama.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return NewEmbedder(client, dim)
}

// NewEmbedder wraps any langchaingo embedding client.
func NewEmbedder(client embeddings.EmbedderClient, dim int) (*OllamaEmbedder, error) {
	inner, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, err
	}
	if dim <= 0 {
		dim = EmbeddingDim
	}
	return &OllamaEmbedder{inner: inner, dim: dim}, nil
}

func (e *OllamaEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	vecs, err := e.inner.EmbedDocuments(ctx, texts)
	metrics.ObserveExternal("ollama_embeddings", err)
	if err != nil {
		return nil, fmt.Errorf("embed %d chunks: %w", len(texts), err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vecs))
	}
	for i, v := range vecs {
		if len(v) != e.dim {
			return nil, fmt.Errorf("chunk %d: expected embedding dim %d, got %d", i, e.dim, len(v))
		}
	}
	return vecs, nil
}

func (e *OllamaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vec, err := e.inner.EmbedQuery(ctx, text)
	metrics.ObserveExternal("ollama_embeddings", err)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vec) != e.dim {
		return nil, fmt.Errorf("expected embedding dim %d, got %d", e.dim, len(vec))
	}
	return vec, nil
}
