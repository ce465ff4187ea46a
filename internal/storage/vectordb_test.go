package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Divas-Gupta30/docflow/internal/processing"
)

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	*dest[0].(*string) = row[0].(string)
	*dest[1].(*string) = row[1].(string)
	*dest[2].(*[]byte) = row[2].([]byte)
	*dest[3].(*float64) = row[3].(float64)
	return nil
}

type fakeBatchResults struct {
	n   int
	err error
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), b.err
}
func (b *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }
func (b *fakeBatchResults) QueryRow() pgx.Row        { return nil }
func (b *fakeBatchResults) Close() error             { return nil }

type fakeConn struct {
	execs     []string
	queryArgs []any
	rows      [][]any
	batch     *pgx.Batch
	batchErr  error
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.execs = append(c.execs, sql)
	return pgconn.NewCommandTag("DELETE 2"), nil
}

func (c *fakeConn) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	c.queryArgs = args
	return &fakeRows{data: c.rows}, nil
}

func (c *fakeConn) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	c.batch = b
	return &fakeBatchResults{n: b.Len(), err: c.batchErr}
}

type fixedEmbedder struct{ dim int }

func (e fixedEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
	}
	return out, nil
}

func (e fixedEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return make([]float32, e.dim), nil
}

func TestVectorStoreQuerySimilar(t *testing.T) {
	meta, _ := json.Marshal(map[string]any{"source": "policy.pdf"})
	conn := &fakeConn{rows: [][]any{
		{"f-0", "Refunds within 30 days.", meta, 0.12},
		{"f-1", "Shipping is free.", []byte(nil), 0.4},
	}}
	vs := NewVectorStore(conn, fixedEmbedder{dim: 4}, 4)

	passages, err := vs.QuerySimilar(context.Background(), "refund policy", 3)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "Refunds within 30 days.", passages[0].Text)
	assert.Equal(t, "policy.pdf", passages[0].Metadata["source"])
	assert.InDelta(t, 0.12, passages[0].Distance, 1e-9)
	assert.Nil(t, passages[1].Metadata)

	require.Len(t, conn.queryArgs, 2)
	assert.IsType(t, pgvector.Vector{}, conn.queryArgs[0])
	assert.Equal(t, 3, conn.queryArgs[1])
}

func TestVectorStoreAddChunks(t *testing.T) {
	conn := &fakeConn{}
	vs := NewVectorStore(conn, fixedEmbedder{dim: 4}, 4)

	err := vs.AddChunks(context.Background(), "file-1", "a.txt", []Chunk{
		{Text: "one", Metadata: processing.Metadata{FileID: "file-1", ChunkIndex: 0}},
		{Text: "two", Metadata: processing.Metadata{FileID: "file-1", ChunkIndex: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, conn.batch)
	require.Equal(t, 2, conn.batch.Len())
	assert.Equal(t, "file-1-1", conn.batch.QueuedQueries[1].Arguments[0])

	assert.NoError(t, vs.AddChunks(context.Background(), "f", "x", nil))

	conn.batchErr = errors.New("duplicate")
	err = vs.AddChunks(context.Background(), "file-1", "a.txt", []Chunk{{Text: "one"}})
	assert.ErrorContains(t, err, "duplicate")
}

func TestVectorStoreSchemaAndDelete(t *testing.T) {
	conn := &fakeConn{}
	vs := NewVectorStore(conn, fixedEmbedder{dim: 768}, 0)

	require.NoError(t, vs.EnsureSchema(context.Background()))
	require.Len(t, conn.execs, 3)
	assert.True(t, strings.Contains(conn.execs[1], "vector(768)"))

	n, err := vs.DeleteFile(context.Background(), "file-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
