package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/Divas-Gupta30/docflow/internal/graph"
	"github.com/Divas-Gupta30/docflow/internal/metrics"
)

// Ollama serves models from a local Ollama server.
type Ollama struct {
	client    llms.Model
	maxTokens int
}

func NewOllama(serverURL, model string) (*Ollama, error) {
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}
	opts := []ollama.Option{ollama.WithServerURL(serverURL)}
	if model != "" {
		opts = append(opts, ollama.WithModel(model))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, callError("ollama", model, err)
	}
	return &Ollama{client: client, maxTokens: 1024}, nil
}

// NewOllamaWithModel wraps an existing langchaingo model.
func NewOllamaWithModel(m llms.Model) *Ollama {
	return &Ollama{client: m, maxTokens: 1024}
}

func (o *Ollama) Generate(ctx context.Context, req graph.GenerateRequest) (string, error) {
	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(o.maxTokens),
	}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	text, err := generate(ctx, o.client, req.Prompt, opts...)
	metrics.ObserveExternal("ollama", err)
	if err != nil {
		return "", callError("ollama", req.Model, err)
	}
	return text, nil
}
