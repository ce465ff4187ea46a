// Package ingestion turns local files into text for indexing.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/log"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyDocument   = errors.New("file appears to be empty or could not be processed")
)

var (
	textExt  = []string{".txt", ".md"}
	imageExt = []string{".png", ".jpg", ".jpeg"}
)

// Supported reports whether name has an extension an Extractor handles.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".pdf" || slices.Contains(textExt, ext) || slices.Contains(imageExt, ext)
}

// Extractor reads text from plain files directly and from PDFs through their
// text layer, using OCR for images and scanned PDFs.
type Extractor struct {
	languages []string
	logger    *zap.Logger
}

// NewExtractor returns an Extractor whose OCR uses the given tesseract
// languages, "eng" when none are given.
func NewExtractor(languages ...string) *Extractor {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Extractor{languages: languages, logger: log.Component("extractor")}
}

// Extract dispatches on the file extension of path.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case slices.Contains(textExt, ext):
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case ext == ".pdf":
		text, err := e.pdfText(ctx, path)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		e.logger.Debug("no text layer, falling back to OCR", zap.String("path", path), zap.Error(err))
		return e.ocrPDF(ctx, path)
	case slices.Contains(imageExt, ext):
		return e.ocrImage(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}
