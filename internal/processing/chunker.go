package processing

import (
	"regexp"
	"strings"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 80
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Chunker splits document text into retrieval-sized passages.
type Chunker struct {
	Size    int
	Overlap int
}

func NewChunker(size, overlap int) Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 10
		}
	}
	return Chunker{Size: size, Overlap: overlap}
}

// ChunkText splits with the default size and overlap.
func ChunkText(text string) []string {
	return NewChunker(DefaultChunkSize, DefaultChunkOverlap).Split(text)
}

// Split packs consecutive paragraphs into chunks of at most Size runes.
// A paragraph longer than Size is cut into windows overlapping by Overlap.
func (c Chunker) Split(text string) []string {
	var out []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n := len([]rune(p))
		if n > c.Size {
			flush()
			out = append(out, c.window(p)...)
			continue
		}
		if curLen > 0 && curLen+2+n > c.Size {
			flush()
		}
		if curLen > 0 {
			cur.WriteString("\n\n")
			curLen += 2
		}
		cur.WriteString(p)
		curLen += n
	}
	flush()
	return out
}

func (c Chunker) window(s string) []string {
	runes := []rune(s)
	step := c.Size - c.Overlap
	var res []string
	for i := 0; i < len(runes); i += step {
		end := min(i+c.Size, len(runes))
		if chunk := strings.TrimSpace(string(runes[i:end])); chunk != "" {
			res = append(res, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return res
}
