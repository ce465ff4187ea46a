package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Divas-Gupta30/docflow/internal/graph"
)

// OllamaPrefix selects the local provider, e.g. "ollama/llama3".
const OllamaPrefix = "ollama/"

// Router picks a provider from the requested model name.
type Router struct {
	Gemini graph.Generator
	Ollama graph.Generator
}

func (r *Router) Generate(ctx context.Context, req graph.GenerateRequest) (string, error) {
	if name, ok := strings.CutPrefix(req.Model, OllamaPrefix); ok {
		if r.Ollama == nil {
			return "", fmt.Errorf("%w: ollama provider not configured", ErrCallFailed)
		}
		req.Model = name
		return r.Ollama.Generate(ctx, req)
	}
	if r.Gemini == nil {
		return "", fmt.Errorf("%w: gemini provider not configured", ErrCallFailed)
	}
	return r.Gemini.Generate(ctx, req)
}

// ChatPrompt is the prompt used by the direct chat endpoint.
func ChatPrompt(message, context string) string {
	if strings.TrimSpace(context) == "" {
		context = "None"
	}
	return "Context:\n" + context + "\n\nQuestion:\n" + message
}
