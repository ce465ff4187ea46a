package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/graph"
	"github.com/Divas-Gupta30/docflow/internal/log"
	"github.com/Divas-Gupta30/docflow/internal/metrics"
	"github.com/Divas-Gupta30/docflow/internal/processing"
)

// PgxConn is the subset of *pgxpool.Pool the vector store uses.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Chunk is one passage ready to be stored.
type Chunk struct {
	Text     string
	Metadata processing.Metadata
}

// VectorStore keeps document chunks with their embeddings in pgvector and
// serves similarity queries for knowledge base nodes.
type VectorStore struct {
	conn     PgxConn
	embedder processing.Embedder
	dim      int
	logger   *zap.Logger
}

func NewVectorStore(conn PgxConn, embedder processing.Embedder, dim int) *VectorStore {
	if dim <= 0 {
		dim = processing.EmbeddingDim
	}
	return &VectorStore{conn: conn, embedder: embedder, dim: dim, logger: log.Component("vectorstore")}
}

func (v *VectorStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			file_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now())`, v.dim),
		`CREATE INDEX IF NOT EXISTS documents_file_id_idx ON documents (file_id)`,
	}
	for _, s := range stmts {
		if _, err := v.conn.Exec(ctx, s); err != nil {
			return fmt.Errorf("ensure vector schema: %w", err)
		}
	}
	return nil
}

// AddChunks embeds and stores the chunks of one file. Chunk ids are
// "{fileID}-{index}".
func (v *VectorStore) AddChunks(ctx context.Context, fileID, filename string, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := v.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, c := range chunks {
		meta, err := json.Marshal(c.Metadata.Map())
		if err != nil {
			return err
		}
		batch.Queue(`INSERT INTO documents (id, file_id, filename, content, metadata, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding`,
			fmt.Sprintf("%s-%d", fileID, i), fileID, filename, c.Text, meta, pgvector.NewVector(vecs[i]))
	}
	br := v.conn.SendBatch(ctx, batch)
	for range chunks {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	metrics.ChunksIndexedTotal.Add(float64(len(chunks)))
	v.logger.Info("indexed document", zap.String("fileID", fileID), zap.String("filename", filename), zap.Int("chunks", len(chunks)))
	return nil
}

// QuerySimilar returns the k nearest chunks by L2 distance, nearest first.
func (v *VectorStore) QuerySimilar(ctx context.Context, text string, k int) ([]graph.Passage, error) {
	vec, err := v.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	rows, err := v.conn.Query(ctx,
		`SELECT id, content, metadata, embedding <-> $1 AS distance FROM documents ORDER BY distance LIMIT $2`,
		pgvector.NewVector(vec), k)
	metrics.ObserveExternal("pgvector", err)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []graph.Passage
	for rows.Next() {
		var (
			p    graph.Passage
			meta []byte
		)
		if err := rows.Scan(&p.ID, &p.Text, &meta, &p.Distance); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &p.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", p.ID, err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteFile removes every chunk of fileID.
func (v *VectorStore) DeleteFile(ctx context.Context, fileID string) (int64, error) {
	tag, err := v.conn.Exec(ctx, `DELETE FROM documents WHERE file_id = $1`, fileID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
