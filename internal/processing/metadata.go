package processing

import "time"

// Metadata describes where an indexed chunk came from.
type Metadata struct {
	FileID     string    `json:"file_id"`
	Source     string    `json:"source"`
	Path       string    `json:"path,omitempty"`
	ChunkIndex int       `json:"chunk_index"`
	ImportedAt time.Time `json:"imported_at"`
}

func (m Metadata) Map() map[string]any {
	out := map[string]any{
		"file_id":     m.FileID,
		"source":      m.Source,
		"chunk_index": m.ChunkIndex,
		"imported_at": m.ImportedAt.UTC().Format(time.RFC3339),
	}
	if m.Path != "" {
		out["path"] = m.Path
	}
	return out
}
