package ingestion

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// ocrPDF rasterises each page with pdftoppm (poppler) and OCRs the pages in
// order. Pages tesseract cannot read are skipped.
func (e *Extractor) ocrPDF(ctx context.Context, path string) (string, error) {
	dir, err := os.MkdirTemp("", "docflow-ocr-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	if err := exec.CommandContext(ctx, "pdftoppm", "-png", path, prefix).Run(); err != nil {
		return "", fmt.Errorf("pdftoppm convert failed: %w", err)
	}
	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", err
	}
	sort.Strings(pages)

	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		t, err := e.ocrImage(p)
		if err != nil {
			e.logger.Warn("OCR failed for page", zap.String("page", filepath.Base(p)), zap.Error(err))
			continue
		}
		if t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n\n"), nil
}

func (e *Extractor) ocrImage(imgPath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.languages...); err != nil {
		return "", err
	}
	if err := client.SetImage(imgPath); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
