package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/log"
)

var errNoGenerator = errors.New("no LLM provider configured")

type llmProcessor struct {
	deps     Dependencies
	settings Settings
}

type llmOptions struct {
	model       string
	temperature float64
	apiKey      string
	webSearch   bool
	webKey      string
}

func (p *llmProcessor) options(node Node) llmOptions {
	opts := llmOptions{
		model:       p.settings.DefaultModel,
		temperature: p.settings.DefaultTemperature,
	}
	if m, ok := node.ConfigString("model"); ok {
		opts.model = m
	}
	if t, ok := node.ConfigFloat("temperature"); ok {
		opts.temperature = t
	}
	opts.apiKey, _ = node.ConfigString("apiKey", "api_key")
	opts.webSearch, _ = node.ConfigBool("webSearch", "useWebSearch", "use_websearch", "useWeb")
	opts.webKey, _ = node.ConfigString("serpApiKey", "serp_api_key", "webSearchApiKey")
	return opts
}

func (p *llmProcessor) Process(ctx context.Context, node Node, rec Record, sessionID string) (Record, error) {
	logger := log.Component("llm-node").With(zap.String("nodeID", node.ID))
	opts := p.options(node)

	summary := "No previous conversation context."
	if p.deps.Memory != nil {
		summary = p.deps.Memory.Summary(ctx, sessionID)
	}

	answer, err := p.generate(ctx, buildPrompt(summary, rec.Context, rec.Query, nil), opts)
	if err != nil {
		logger.Warn("LLM call failed", zap.String("model", opts.model), zap.Error(err))
		return p.finish(rec, fmt.Sprintf("Error calling LLM: %v", err)), nil
	}

	if opts.webSearch && p.deps.Web != nil && contextInsufficient(rec.Context, answer, p.settings.MinContextLength) {
		hits := p.search(ctx, rec.Query, opts.webKey, logger)
		if len(hits) > 0 {
			logger.Debug("reissuing LLM call with web results", zap.Int("hits", len(hits)))
			enhanced, err := p.generate(ctx, buildPrompt(summary, rec.Context, rec.Query, hits), opts)
			if err != nil {
				logger.Warn("web-augmented LLM call failed", zap.Error(err))
				answer = fmt.Sprintf("Error calling LLM: %v", err)
			} else {
				answer = enhanced
			}
		}
	}

	return p.finish(rec, answer), nil
}

func (p *llmProcessor) finish(rec Record, answer string) Record {
	rec.Output = answer
	rec.LLMResponse = answer
	return rec
}

func (p *llmProcessor) generate(ctx context.Context, prompt string, opts llmOptions) (string, error) {
	if p.deps.Generator == nil {
		return "", errNoGenerator
	}
	callCtx, cancel := withTimeout(ctx, p.settings.LLMTimeout)
	defer cancel()

	out, err := p.deps.Generator.Generate(callCtx, GenerateRequest{
		Prompt:      prompt,
		Model:       opts.model,
		Temperature: opts.temperature,
		APIKey:      opts.apiKey,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (p *llmProcessor) search(ctx context.Context, query, key string, logger *zap.Logger) []SearchHit {
	callCtx, cancel := withTimeout(ctx, p.settings.WebSearchTimeout)
	defer cancel()

	hits, err := p.deps.Web.Search(callCtx, query, key)
	if err != nil {
		logger.Warn("web search failed", zap.Error(err))
		return nil
	}
	limit := p.settings.WebResults
	if limit <= 0 || limit > 3 {
		limit = 3
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func (p *llmProcessor) Render(rec Record) string { return rec.Output }
