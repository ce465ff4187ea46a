package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Memory.MaxHistory)
	assert.Equal(t, 3, cfg.VectorStore.TopK)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.DefaultModel)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docflow.yaml")
	yamlDoc := `
server:
  port: 9000
llm:
  default_model: gemini-2.0-flash
  timeout: 5s
memory:
  max_history: 6
  session_ttl: 1h
database:
  driver: sqlite
  url: file:test.db
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.DefaultModel)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 6, cfg.Memory.MaxHistory)
	assert.Equal(t, time.Hour, cfg.Memory.SessionTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "env-key", cfg.LLM.GeminiAPIKey)
	// untouched keys keep their defaults
	assert.Equal(t, 800, cfg.Chunking.Size)
	assert.Equal(t, []string{"eng"}, cfg.Chunking.OCRLanguages)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Database.Driver = "mysql"
	cfg.Memory.Backend = "redis"
	cfg.Memory.MaxHistory = 0
	cfg.WebSearch.Provider = "bing"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"server.port", "database.driver", "redis.addr", "max_history", "web_search.provider"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8080
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}
