package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/Divas-Gupta30/docflow/internal/graph"
)

type fakeModel struct {
	reply   string
	err     error
	prompts []string
	opts    []llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var o llms.CallOptions
	for _, opt := range options {
		opt(&o)
	}
	f.opts = append(f.opts, o)
	for _, m := range msgs {
		for _, p := range m.Parts {
			if t, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, t.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func factoryFor(m *fakeModel, keys *[]string) ModelFactory {
	return func(_ context.Context, apiKey, _ string) (llms.Model, error) {
		*keys = append(*keys, apiKey)
		return m, nil
	}
}

func TestNormalizeModel(t *testing.T) {
	cases := map[string]struct {
		want string
		ok   bool
	}{
		"gemini-2.0-flash":      {"gemini-2.0-flash", true},
		"Gemini 2.5 Flash-Lite": {"gemini-2.5-flash-lite", true},
		"Gemini 2.5 Pro":        {"gemini-2.5-pro", true},
		"models/gemini-1.5-pro": {"gemini-1.5-pro", true},
		"gpt-4o":                {DefaultGeminiModel, false},
		"":                      {DefaultGeminiModel, false},
	}
	for in, tc := range cases {
		got, ok := NormalizeModel(in, "")
		assert.Equal(t, tc.want, got, in)
		assert.Equal(t, tc.ok, ok, in)
	}

	got, _ := NormalizeModel("unknown", "gemini-2.0-flash")
	assert.Equal(t, "gemini-2.0-flash", got)
}

func TestGeminiGenerate(t *testing.T) {
	m := &fakeModel{reply: "  hello there \n"}
	var keys []string
	g := NewGemini("env-key", "", WithModelFactory(factoryFor(m, &keys)), WithMaxTokens(512))

	out, err := g.Generate(context.Background(), graph.GenerateRequest{
		Prompt:      "say hi",
		Model:       "Gemini 2.0 Flash",
		Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, []string{"say hi"}, m.prompts)
	require.Len(t, m.opts, 1)
	assert.Equal(t, "gemini-2.0-flash", m.opts[0].Model)
	assert.InDelta(t, 0.3, m.opts[0].Temperature, 1e-9)
	assert.Equal(t, 512, m.opts[0].MaxTokens)

	// the client for a key is reused, a request key gets its own client
	_, err = g.Generate(context.Background(), graph.GenerateRequest{Prompt: "again"})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), graph.GenerateRequest{Prompt: "mine", APIKey: "user-key"})
	require.NoError(t, err)
	assert.Equal(t, []string{"env-key", "user-key"}, keys)
	assert.Equal(t, DefaultGeminiModel, m.opts[1].Model)
}

func TestGeminiErrors(t *testing.T) {
	var keys []string
	g := NewGemini("", "", WithModelFactory(factoryFor(&fakeModel{}, &keys)))
	_, err := g.Generate(context.Background(), graph.GenerateRequest{Prompt: "p"})
	assert.ErrorIs(t, err, ErrCallFailed)
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.Empty(t, keys)

	boom := errors.New("quota exceeded")
	g = NewGemini("k", "", WithModelFactory(factoryFor(&fakeModel{err: boom}, &keys)))
	_, err = g.Generate(context.Background(), graph.GenerateRequest{Prompt: "p"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "quota exceeded")

	g = NewGemini("k", "", WithModelFactory(factoryFor(&fakeModel{reply: "   "}, &keys)))
	_, err = g.Generate(context.Background(), graph.GenerateRequest{Prompt: "p"})
	assert.ErrorIs(t, err, ErrEmpty)

	g = NewGemini("k", "", WithModelFactory(func(context.Context, string, string) (llms.Model, error) {
		return nil, errors.New("bad key format")
	}))
	_, err = g.Generate(context.Background(), graph.GenerateRequest{Prompt: "p"})
	assert.ErrorIs(t, err, ErrCallFailed)
}

func TestOllamaGenerate(t *testing.T) {
	m := &fakeModel{reply: "local answer"}
	o := NewOllamaWithModel(m)
	out, err := o.Generate(context.Background(), graph.GenerateRequest{Prompt: "p", Model: "llama3", Temperature: 0.1})
	require.NoError(t, err)
	assert.Equal(t, "local answer", out)
	assert.Equal(t, "llama3", m.opts[0].Model)
}

func TestRouter(t *testing.T) {
	var gotGemini, gotOllama string
	r := &Router{
		Gemini: generatorFunc(func(_ context.Context, req graph.GenerateRequest) (string, error) {
			gotGemini = req.Model
			return "g", nil
		}),
		Ollama: generatorFunc(func(_ context.Context, req graph.GenerateRequest) (string, error) {
			gotOllama = req.Model
			return "o", nil
		}),
	}

	out, err := r.Generate(context.Background(), graph.GenerateRequest{Model: "ollama/mistral"})
	require.NoError(t, err)
	assert.Equal(t, "o", out)
	assert.Equal(t, "mistral", gotOllama)

	out, err = r.Generate(context.Background(), graph.GenerateRequest{Model: "gemini-2.5-pro"})
	require.NoError(t, err)
	assert.Equal(t, "g", out)
	assert.Equal(t, "gemini-2.5-pro", gotGemini)

	_, err = (&Router{}).Generate(context.Background(), graph.GenerateRequest{Model: "ollama/x"})
	assert.ErrorIs(t, err, ErrCallFailed)
}

func TestChatPrompt(t *testing.T) {
	assert.Equal(t, "Context:\nNone\n\nQuestion:\nhi", ChatPrompt("hi", ""))
	assert.Equal(t, "Context:\nabc\n\nQuestion:\nhi", ChatPrompt("hi", "abc"))
}

type generatorFunc func(ctx context.Context, req graph.GenerateRequest) (string, error)

func (f generatorFunc) Generate(ctx context.Context, req graph.GenerateRequest) (string, error) {
	return f(ctx, req)
}
