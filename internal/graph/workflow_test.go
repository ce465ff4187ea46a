package graph

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"userQuery":      KindUserQuery,
		"user_query":     KindUserQuery,
		"UserQuery":      KindUserQuery,
		"knowledgeBase":  KindKnowledgeBase,
		"knowledge":      KindKnowledgeBase,
		"Knowledge Base": KindKnowledgeBase,
		"llm":            KindLLM,
		"llmEngine":      KindLLM,
		"LLM":            KindLLM,
		"output":         KindOutput,
		"webhook":        KindUnknown,
		"":               KindUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseKind(in), in)
	}
}

func TestNodeUnmarshalBuilderShape(t *testing.T) {
	payload := `{
		"nodes": [
			{"id": "userQuery-1", "type": "userQuery", "data": {"label": "q", "config": {}}},
			{"id": "llm-1", "type": "llm", "data": {"config": {"model": "gemini-2.0-flash", "temperature": 0.2, "webSearch": true}}},
			{"id": "custom-1", "type": "webhook", "config": {"url": "x"}}
		],
		"edges": [{"id": "e1", "source": "userQuery-1", "target": "llm-1"}]
	}`

	var wf Workflow
	require.NoError(t, json.Unmarshal([]byte(payload), &wf))
	require.Len(t, wf.Nodes, 3)

	assert.Equal(t, KindUserQuery, wf.Nodes[0].Kind)
	llm := wf.Nodes[1]
	assert.Equal(t, KindLLM, llm.Kind)
	model, ok := llm.ConfigString("model")
	assert.True(t, ok)
	assert.Equal(t, "gemini-2.0-flash", model)
	temp, ok := llm.ConfigFloat("temperature")
	assert.True(t, ok)
	assert.InDelta(t, 0.2, temp, 1e-9)
	web, ok := llm.ConfigBool("webSearch")
	assert.True(t, ok)
	assert.True(t, web)

	custom := wf.Nodes[2]
	assert.Equal(t, KindUnknown, custom.Kind)
	assert.Equal(t, "webhook", custom.TypeName())

	require.Len(t, wf.Edges, 1)
	assert.Equal(t, Edge{ID: "e1", Source: "userQuery-1", Target: "llm-1"}, wf.Edges[0])
}

func TestNodeMarshalRoundTripKeepsType(t *testing.T) {
	n := Node{ID: "1", Kind: KindKnowledgeBase, Config: map[string]any{"k": "v"}}
	b, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","type":"knowledgeBase","config":{"k":"v"}}`, string(b))
}

func TestConfigAccessors(t *testing.T) {
	n := Node{Config: map[string]any{
		"temperature": "0.4",
		"useWeb":      "true",
		"api_key":     "  secret ",
		"blank":       "   ",
		"count":       3,
	}}

	f, ok := n.ConfigFloat("temperature")
	assert.True(t, ok)
	assert.InDelta(t, 0.4, f, 1e-9)

	c, ok := n.ConfigFloat("count")
	assert.True(t, ok)
	assert.Equal(t, 3.0, c)

	b, ok := n.ConfigBool("webSearch", "useWeb")
	assert.True(t, ok)
	assert.True(t, b)

	s, ok := n.ConfigString("apiKey", "api_key")
	assert.True(t, ok)
	assert.Equal(t, "secret", s)

	_, ok = n.ConfigString("blank")
	assert.False(t, ok)
	_, ok = n.ConfigFloat("missing")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	query := Node{ID: "q", Kind: KindUserQuery}
	out := Node{ID: "o", Kind: KindOutput}
	kb := Node{ID: "k", Kind: KindKnowledgeBase}

	assert.NoError(t, Validate([]Node{query, kb, out}, nil))

	err := Validate([]Node{kb, out}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWorkflow))
	var missing *MissingNodeError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, KindUserQuery, missing.Kind)
	assert.Contains(t, err.Error(), "userQuery")

	err = Validate([]Node{query, kb}, nil)
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, KindOutput, missing.Kind)

	err = Validate([]Node{query, out, {ID: "q", Kind: KindLLM}}, nil)
	assert.True(t, errors.Is(err, ErrInvalidWorkflow))
	assert.Contains(t, err.Error(), "duplicate")

	err = Validate([]Node{query, out, {Kind: KindLLM}}, nil)
	assert.True(t, errors.Is(err, ErrInvalidWorkflow))
}

func TestNewWorkflow(t *testing.T) {
	wf, err := NewWorkflow([]Node{{ID: "q", Kind: KindUserQuery}, {ID: "o", Kind: KindOutput}}, []Edge{{Source: "q", Target: "o"}})
	require.NoError(t, err)
	n, ok := wf.NodeByID("o")
	assert.True(t, ok)
	assert.Equal(t, KindOutput, n.Kind)
	_, ok = wf.NodeByID("zzz")
	assert.False(t, ok)

	_, err = NewWorkflow([]Node{{ID: "o", Kind: KindOutput}}, nil)
	assert.ErrorIs(t, err, ErrInvalidWorkflow)
}

func TestEntryNode(t *testing.T) {
	nodes := []Node{
		{ID: "kb", Kind: KindKnowledgeBase},
		{ID: "first", Kind: KindUserQuery},
		{ID: "second", Kind: KindUserQuery},
	}
	n, err := EntryNode(nodes)
	require.NoError(t, err)
	assert.Equal(t, "first", n.ID)

	_, err = EntryNode([]Node{{ID: "kb", Kind: KindKnowledgeBase}})
	assert.ErrorIs(t, err, ErrNoEntryNode)
}

func TestNextNodeFirstMatchWins(t *testing.T) {
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "a", Target: "d"},
	}
	next, ok := NextNode(edges, "a")
	assert.True(t, ok)
	assert.Equal(t, "b", next)

	_, ok = NextNode(edges, "c")
	assert.False(t, ok)
}
