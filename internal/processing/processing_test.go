package processing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextPacksParagraphs(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph.\n\n\n\nThird."
	chunks := ChunkText(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.\n\nThird.", chunks[0])

	assert.Empty(t, ChunkText("   \n\n  "))
}

func TestChunkerSplitsLongParagraphs(t *testing.T) {
	c := NewChunker(10, 2)
	chunks := c.Split("abcdefghijklmnopqrstuvwxyz")
	require.Equal(t, []string{"abcdefghij", "ijklmnopqr", "qrstuvwxyz"}, chunks)

	for _, ch := range c.Split(strings.Repeat("é", 25)) {
		assert.LessOrEqual(t, len([]rune(ch)), 10)
	}
}

func TestChunkerStartsNewChunkWhenFull(t *testing.T) {
	c := NewChunker(12, 2)
	chunks := c.Split("aaaaa\n\nbbbbb\n\nccccc")
	assert.Equal(t, []string{"aaaaa\n\nbbbbb", "ccccc"}, chunks)
}

func TestNewChunkerDefaults(t *testing.T) {
	assert.Equal(t, Chunker{Size: 800, Overlap: 80}, NewChunker(0, -1))
	assert.Equal(t, Chunker{Size: 50, Overlap: 5}, NewChunker(50, 50))
}

func TestMetadataMap(t *testing.T) {
	m := Metadata{FileID: "f", Source: "a.pdf", ChunkIndex: 2, ImportedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	got := m.Map()
	assert.Equal(t, "f", got["file_id"])
	assert.Equal(t, 2, got["chunk_index"])
	assert.Equal(t, "2025-01-02T03:04:05Z", got["imported_at"])
	assert.NotContains(t, got, "path")
}

type fakeEmbedClient struct {
	dim int
	err error
}

func (f fakeEmbedClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}

func TestEmbedder(t *testing.T) {
	e, err := NewEmbedder(fakeEmbedClient{dim: 4}, 4)
	require.NoError(t, err)

	vecs, err := e.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)

	vec, err := e.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, vec, 4)

	_, err = e.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = e.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEmbedderRejectsWrongDimension(t *testing.T) {
	e, err := NewEmbedder(fakeEmbedClient{dim: 3}, 4)
	require.NoError(t, err)
	_, err = e.EmbedQuery(context.Background(), "q")
	assert.ErrorContains(t, err, "expected embedding dim 4, got 3")

	boom := errors.New("ollama down")
	e, err = NewEmbedder(fakeEmbedClient{err: boom}, 4)
	require.NoError(t, err)
	_, err = e.EmbedDocuments(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)
}
