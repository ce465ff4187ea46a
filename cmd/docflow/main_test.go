package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Divas-Gupta30/docflow/internal/config"
	"github.com/Divas-Gupta30/docflow/internal/graph"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWorkflowJSON(t *testing.T) {
	path := writeFile(t, "wf.json", `{
		"nodes": [
			{"id": "1", "type": "userQuery"},
			{"id": "2", "type": "llm", "data": {"config": {"model": "gemini-2.0-flash"}}},
			{"id": "3", "type": "output"}
		],
		"edges": [{"source": "1", "target": "2"}, {"source": "2", "target": "3"}]
	}`)

	wf, err := loadWorkflow(path)
	require.NoError(t, err)
	require.Len(t, wf.Nodes, 3)
	assert.Equal(t, graph.KindLLM, wf.Nodes[1].Kind)
	model, ok := wf.Nodes[1].ConfigString("model")
	assert.True(t, ok)
	assert.Equal(t, "gemini-2.0-flash", model)
}

func TestLoadWorkflowWrappedYAML(t *testing.T) {
	path := writeFile(t, "wf.yaml", `
workflow:
  nodes:
    - id: q
      type: userQuery
    - id: kb
      type: knowledgeBase
    - id: out
      type: output
  edges:
    - source: q
      target: kb
    - source: kb
      target: out
`)

	wf, err := loadWorkflow(path)
	require.NoError(t, err)
	assert.Equal(t, []graph.Kind{graph.KindUserQuery, graph.KindKnowledgeBase, graph.KindOutput},
		[]graph.Kind{wf.Nodes[0].Kind, wf.Nodes[1].Kind, wf.Nodes[2].Kind})
	next, ok := graph.NextNode(wf.Edges, "q")
	assert.True(t, ok)
	assert.Equal(t, "kb", next)
}

func TestLoadWorkflowErrors(t *testing.T) {
	_, err := loadWorkflow(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = loadWorkflow(writeFile(t, "bad.json", `{"nodes": [`))
	assert.Error(t, err)

	_, err = loadWorkflow(writeFile(t, "nooutput.json", `{"nodes": [{"id": "1", "type": "userQuery"}]}`))
	assert.ErrorIs(t, err, graph.ErrInvalidWorkflow)
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.VectorStore.TopK = 5
	cfg.LLM.DefaultModel = "gemini-2.0-flash"
	cfg.LLM.Temperature = 0.3
	cfg.LLM.Timeout = 20 * time.Second
	cfg.WebSearch.MaxResults = 4

	s := (&app{cfg: cfg}).settings()
	assert.Equal(t, 5, s.TopK)
	assert.Equal(t, "gemini-2.0-flash", s.DefaultModel)
	assert.InDelta(t, 0.3, s.DefaultTemperature, 1e-9)
	assert.Equal(t, 20*time.Second, s.LLMTimeout)
	assert.Equal(t, 4, s.WebResults)
	assert.Equal(t, graph.DefaultSettings().MinContextLength, s.MinContextLength)
}

func TestHealthChecksOnlyForConfiguredServices(t *testing.T) {
	a := &app{cfg: config.Default()}
	assert.Empty(t, a.healthChecks())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "docflow dev\n", out.String())
}
