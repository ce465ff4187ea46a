// Package llm holds the LLM providers behind graph.Generator.
package llm

import (
	"context"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/graph"
	"github.com/Divas-Gupta30/docflow/internal/log"
	"github.com/Divas-Gupta30/docflow/internal/metrics"
)

// ModelFactory builds a langchaingo model bound to one API key.
type ModelFactory func(ctx context.Context, apiKey, defaultModel string) (llms.Model, error)

func newGoogleAI(ctx context.Context, apiKey, defaultModel string) (llms.Model, error) {
	return googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(defaultModel),
	)
}

// Gemini calls Google's Gemini models. A request may carry its own API key;
// clients are built lazily and reused per key.
type Gemini struct {
	apiKey       string
	defaultModel string
	maxTokens    int
	newModel     ModelFactory
	logger       *zap.Logger

	mu      sync.Mutex
	clients map[string]llms.Model
}

type GeminiOption func(*Gemini)

func WithModelFactory(f ModelFactory) GeminiOption {
	return func(g *Gemini) { g.newModel = f }
}

func WithMaxTokens(n int) GeminiOption {
	return func(g *Gemini) { g.maxTokens = n }
}

func NewGemini(apiKey, defaultModel string, opts ...GeminiOption) *Gemini {
	if defaultModel == "" {
		defaultModel = DefaultGeminiModel
	}
	g := &Gemini{
		apiKey:       apiKey,
		defaultModel: defaultModel,
		maxTokens:    1024,
		newModel:     newGoogleAI,
		logger:       log.Component("gemini"),
		clients:      make(map[string]llms.Model),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Gemini) Generate(ctx context.Context, req graph.GenerateRequest) (string, error) {
	model, ok := NormalizeModel(req.Model, g.defaultModel)
	if !ok && req.Model != "" {
		g.logger.Warn("model not recognized, using default", zap.String("requested", req.Model), zap.String("model", model))
	}

	key := req.APIKey
	if key == "" {
		key = g.apiKey
	}
	if key == "" {
		metrics.ObserveExternal("gemini", ErrNoAPIKey)
		return "", callError("gemini", model, ErrNoAPIKey)
	}

	client, err := g.client(ctx, key)
	if err != nil {
		metrics.ObserveExternal("gemini", err)
		return "", callError("gemini", model, err)
	}

	g.logger.Debug("calling Gemini", zap.String("model", model), zap.Float64("temperature", req.Temperature))
	text, err := generate(ctx, client, req.Prompt,
		llms.WithModel(model),
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(g.maxTokens),
		llms.WithTopP(0.95),
		llms.WithTopK(40),
	)
	metrics.ObserveExternal("gemini", err)
	if err != nil {
		return "", callError("gemini", model, err)
	}
	return text, nil
}

func (g *Gemini) client(ctx context.Context, key string) (llms.Model, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[key]; ok {
		return c, nil
	}
	c, err := g.newModel(ctx, key, g.defaultModel)
	if err != nil {
		return nil, err
	}
	g.clients[key] = c
	return c, nil
}

func generate(ctx context.Context, model llms.Model, prompt string, opts ...llms.CallOption) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, opts...)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}
