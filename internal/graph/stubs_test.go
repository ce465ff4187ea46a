package graph

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Divas-Gupta30/docflow/internal/memory"
)

type retrieverFunc func(ctx context.Context, text string, k int) ([]Passage, error)

func (f retrieverFunc) QuerySimilar(ctx context.Context, text string, k int) ([]Passage, error) {
	return f(ctx, text, k)
}

type generatorFunc func(ctx context.Context, req GenerateRequest) (string, error)

func (f generatorFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}

type searcherFunc func(ctx context.Context, query, apiKey string) ([]SearchHit, error)

func (f searcherFunc) Search(ctx context.Context, query, apiKey string) ([]SearchHit, error) {
	return f(ctx, query, apiKey)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func staticPassages(texts ...string) retrieverFunc {
	return func(context.Context, string, int) ([]Passage, error) {
		out := make([]Passage, len(texts))
		for i, t := range texts {
			out[i] = Passage{ID: t, Text: t, Distance: float64(i) / 10}
		}
		return out, nil
	}
}

func echoGenerator(answer string) generatorFunc {
	return func(context.Context, GenerateRequest) (string, error) { return answer, nil }
}

func newStore() *memory.Store {
	return memory.NewStore(memory.NewInMemoryBackend(0, 0), memory.DefaultMaxHistory)
}

// ragWorkflow is the canonical UserQuery -> KnowledgeBase -> LLM -> Output chain.
func ragWorkflow() *Workflow {
	return &Workflow{
		Nodes: []Node{
			{ID: "1", Kind: KindUserQuery},
			{ID: "2", Kind: KindKnowledgeBase},
			{ID: "3", Kind: KindLLM},
			{ID: "4", Kind: KindOutput},
		},
		Edges: []Edge{
			{Source: "1", Target: "2"},
			{Source: "2", Target: "3"},
			{Source: "3", Target: "4"},
		},
	}
}
