package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/log"
	"github.com/Divas-Gupta30/docflow/internal/processing"
	"github.com/Divas-Gupta30/docflow/internal/storage"
)

// ChunkSink stores the chunks of one file.
type ChunkSink interface {
	AddChunks(ctx context.Context, fileID, filename string, chunks []storage.Chunk) error
}

// IndexResult describes one indexed file.
type IndexResult struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
}

// Indexer runs extract, chunk and store for files.
type Indexer struct {
	chunker processing.Chunker
	sink    ChunkSink
	extract func(ctx context.Context, path string) (string, error)
	newID   func() string
	now     func() time.Time
	logger  *zap.Logger
}

// IndexerOption customises an Indexer.
type IndexerOption func(*Indexer)

// WithExtractor replaces the default Extractor.
func WithExtractor(e *Extractor) IndexerOption {
	return func(ix *Indexer) { ix.extract = e.Extract }
}

func NewIndexer(chunker processing.Chunker, sink ChunkSink, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		chunker: chunker,
		sink:    sink,
		extract: NewExtractor().Extract,
		newID:   uuid.NewString,
		now:     time.Now,
		logger:  log.Component("indexer"),
	}
	for _, o := range opts {
		o(ix)
	}
	return ix
}

// IndexFile indexes path under displayName, which defaults to the base name.
func (ix *Indexer) IndexFile(ctx context.Context, path, displayName string) (*IndexResult, error) {
	if displayName == "" {
		displayName = filepath.Base(path)
	}
	if !Supported(displayName) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(displayName))
	}
	text, err := ix.extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", displayName, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	pieces := ix.chunker.Split(text)
	if len(pieces) == 0 {
		return nil, ErrEmptyDocument
	}

	fileID := ix.newID()
	imported := ix.now().UTC()
	chunks := make([]storage.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = storage.Chunk{Text: p, Metadata: processing.Metadata{
			FileID:     fileID,
			Source:     displayName,
			Path:       path,
			ChunkIndex: i,
			ImportedAt: imported,
		}}
	}
	if err := ix.sink.AddChunks(ctx, fileID, displayName, chunks); err != nil {
		return nil, fmt.Errorf("store %s: %w", displayName, err)
	}
	return &IndexResult{FileID: fileID, Filename: displayName, Chunks: len(chunks)}, nil
}

// IndexDir indexes every supported file under root. Failing files are
// logged and skipped; the error joins their failures.
func (ix *Indexer) IndexDir(ctx context.Context, root string) ([]IndexResult, error) {
	files, err := LoadLocalFiles(root)
	if err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}
	var (
		results []IndexResult
		errs    []error
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		ix.logger.Info("indexing", zap.String("path", f))
		res, err := ix.IndexFile(ctx, f, "")
		if err != nil {
			ix.logger.Warn("skip file", zap.String("path", f), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		results = append(results, *res)
	}
	return results, errors.Join(errs...)
}
