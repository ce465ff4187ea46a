package api

import (
	"github.com/Divas-Gupta30/docflow/internal/graph"
	"github.com/Divas-Gupta30/docflow/internal/memory"
)

type runRequest struct {
	Workflow  *graph.Workflow `json:"workflow"`
	Query     string          `json:"query"`
	SessionID string          `json:"session_id"`
}

type runSavedRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type runResponse struct {
	*graph.Result
	Error string `json:"error,omitempty"`
}

type buildRequest struct {
	Workflow *graph.Workflow `json:"workflow"`
}

type buildResponse struct {
	Valid     bool   `json:"valid"`
	EntryNode string `json:"entry_node"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
}

type saveRequest struct {
	Name     string          `json:"name"`
	Workflow *graph.Workflow `json:"workflow"`
}

type chatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type conversationResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []memory.Message `json:"messages"`
	Summary   string           `json:"summary"`
}

type uploadResponse struct {
	Message  string `json:"message"`
	FileID   string `json:"file_id"`
	Chunks   int    `json:"chunks"`
	Filename string `json:"filename"`
}

type errorResponse struct {
	Error string `json:"error"`
}
