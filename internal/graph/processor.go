package graph

import (
	"context"
	"time"
)

// Processor is the behaviour bound to a node kind. Process must not let
// collaborator failures escape; a returned error aborts the run.
type Processor interface {
	Process(ctx context.Context, node Node, rec Record, sessionID string) (Record, error)
	// Render produces the trace snapshot for the record Process returned.
	Render(rec Record) string
}

// Registry maps kinds to processors.
type Registry map[Kind]Processor

// Dependencies are the external collaborators the processors call. Any of
// them may be nil; the affected node then degrades to a textual result.
type Dependencies struct {
	Retriever Retriever
	Generator Generator
	Web       WebSearcher
	Memory    Summarizer
}

type Settings struct {
	TopK               int
	DefaultModel       string
	DefaultTemperature float64
	WebResults         int
	MinContextLength   int
	RetrievalTimeout   time.Duration
	LLMTimeout         time.Duration
	WebSearchTimeout   time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		TopK:               3,
		DefaultModel:       "gemini-2.5-flash",
		DefaultTemperature: 0.7,
		WebResults:         3,
		MinContextLength:   50,
		RetrievalTimeout:   10 * time.Second,
		LLMTimeout:         60 * time.Second,
		WebSearchTimeout:   15 * time.Second,
	}
}

// NewRegistry binds the built-in processors to their kinds.
func NewRegistry(deps Dependencies, settings Settings) Registry {
	return Registry{
		KindUserQuery:     userQueryProcessor{},
		KindKnowledgeBase: &knowledgeBaseProcessor{retriever: deps.Retriever, settings: settings},
		KindLLM:           &llmProcessor{deps: deps, settings: settings},
		KindOutput:        outputProcessor{},
		KindUnknown:       passThroughProcessor{},
	}
}

func (r Registry) lookup(k Kind) Processor {
	if p, ok := r[k]; ok && p != nil {
		return p
	}
	return passThroughProcessor{}
}

// withTimeout bounds one external call; zero means no extra deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

type userQueryProcessor struct{}

func (userQueryProcessor) Process(_ context.Context, _ Node, rec Record, _ string) (Record, error) {
	rec.Output = rec.Query
	return rec, nil
}

func (userQueryProcessor) Render(rec Record) string { return rec.Query }

// passThroughProcessor handles kinds this build does not know.
type passThroughProcessor struct{}

func (passThroughProcessor) Process(_ context.Context, _ Node, rec Record, _ string) (Record, error) {
	return rec, nil
}

func (passThroughProcessor) Render(rec Record) string {
	if rec.Output != "" {
		return rec.Output
	}
	return rec.Query
}
