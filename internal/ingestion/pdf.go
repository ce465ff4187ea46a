package ingestion

import (
	"context"
	"os/exec"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// pdfText reads the text layer page by page, joining pages with a blank
// line so the chunker sees page boundaries as paragraph breaks. When the
// layer is empty it tries pdftotext before giving up.
func (e *Extractor) pdfText(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			e.logger.Debug("unreadable page", zap.String("path", path), zap.Int("page", i), zap.Error(err))
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) > 0 {
		return strings.Join(pages, "\n\n"), nil
	}

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
