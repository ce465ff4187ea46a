package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/graph"
	"github.com/Divas-Gupta30/docflow/internal/ingestion"
	"github.com/Divas-Gupta30/docflow/internal/llm"
	"github.com/Divas-Gupta30/docflow/internal/storage"
)

var (
	errBadRequest  = errors.New("bad request")
	errUnavailable = errors.New("not configured")
)

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Workflow == nil {
		s.writeError(w, fmt.Errorf("%w: workflow is required", errBadRequest))
		return
	}
	wf, err := graph.NewWorkflow(req.Workflow.Nodes, req.Workflow.Edges)
	if err != nil {
		s.writeError(w, err)
		return
	}
	entry, err := graph.EntryNode(wf.Nodes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse{
		Valid:     true,
		EntryNode: entry.ID,
		Nodes:     len(wf.Nodes),
		Edges:     len(wf.Edges),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Workflow == nil {
		s.writeError(w, fmt.Errorf("%w: workflow is required", errBadRequest))
		return
	}
	s.execute(w, r, req.Workflow, "", req.Query, req.SessionID)
}

func (s *Server) handleRunSaved(w http.ResponseWriter, r *http.Request) {
	if s.deps.Workflows == nil {
		s.writeError(w, fmt.Errorf("workflow store %w", errUnavailable))
		return
	}
	var req runSavedRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	saved, err := s.deps.Workflows.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.execute(w, r, &saved.Workflow, saved.ID, req.Query, req.SessionID)
}

// execute runs wf and answers with the result. A run that failed inside a
// node still returns its partial trace, with status 500.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, wf *graph.Workflow, workflowID, query, sessionID string) {
	res, err := s.deps.Engine.Execute(r.Context(), wf, query, sessionID)
	if res == nil {
		s.writeError(w, err)
		return
	}
	s.logChat(r, workflowID, query, res)

	status := http.StatusOK
	resp := runResponse{Result: res}
	if err != nil {
		status = http.StatusInternalServerError
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

func (s *Server) logChat(r *http.Request, workflowID, query string, res *graph.Result) {
	if s.deps.Workflows == nil {
		return
	}
	_, err := s.deps.Workflows.LogChat(r.Context(), storage.ChatLog{
		WorkflowID: workflowID,
		SessionID:  res.SessionID,
		Query:      query,
		Response:   res.FinalOutput,
		Status:     string(res.Status),
	})
	if err != nil {
		s.logger.Warn("failed to record chat log", zap.Error(err))
	}
}

func (s *Server) handleSaveWorkflow(w http.ResponseWriter, r *http.Request) {
	if s.deps.Workflows == nil {
		s.writeError(w, fmt.Errorf("workflow store %w", errUnavailable))
		return
	}
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Workflow == nil {
		s.writeError(w, fmt.Errorf("%w: name and workflow are required", errBadRequest))
		return
	}
	saved, err := s.deps.Workflows.Create(r.Context(), req.Name, *req.Workflow)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	if s.deps.Workflows == nil {
		s.writeError(w, fmt.Errorf("workflow store %w", errUnavailable))
		return
	}
	list, err := s.deps.Workflows.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	if s.deps.Workflows == nil {
		s.writeError(w, fmt.Errorf("workflow store %w", errUnavailable))
		return
	}
	saved, err := s.deps.Workflows.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if s.deps.Workflows == nil {
		s.writeError(w, fmt.Errorf("workflow store %w", errUnavailable))
		return
	}
	if err := s.deps.Workflows.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	if s.deps.Memory == nil {
		s.writeError(w, fmt.Errorf("conversation memory %w", errUnavailable))
		return
	}
	history, err := s.deps.Memory.History(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conversationResponse{
		SessionID: sessionID,
		Messages:  history,
		Summary:   s.deps.Memory.Summary(r.Context(), sessionID),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Indexer == nil {
		s.writeError(w, fmt.Errorf("document indexing %w", errUnavailable))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		s.writeError(w, fmt.Errorf("%w: no filename provided", errBadRequest))
		return
	}
	if !ingestion.Supported(name) {
		s.writeError(w, fmt.Errorf("%w: %s", ingestion.ErrUnsupportedType, filepath.Ext(name)))
		return
	}

	if err := os.MkdirAll(s.opts.UploadDir, 0o755); err != nil {
		s.writeError(w, err)
		return
	}
	path := filepath.Join(s.opts.UploadDir, uuid.NewString()+"_"+name)
	if err := saveUpload(path, file); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("saved uploaded file", zap.String("path", path))

	res, err := s.deps.Indexer.IndexFile(r.Context(), path, name)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.Warn("failed to remove upload", zap.String("path", path), zap.Error(rmErr))
		}
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Message:  "File uploaded and processed successfully",
		FileID:   res.FileID,
		Chunks:   res.Chunks,
		Filename: res.Filename,
	})
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.deps.Chat == nil {
		s.writeError(w, fmt.Errorf("LLM provider %w", errUnavailable))
		return
	}
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, fmt.Errorf("%w: message is required", errBadRequest))
		return
	}
	reply, err := s.deps.Chat.Generate(r.Context(), graph.GenerateRequest{
		Prompt:      llm.ChatPrompt(req.Message, req.Context),
		Model:       s.opts.ChatModel,
		Temperature: s.opts.ChatTemperature,
	})
	if err != nil {
		s.logger.Warn("chat call failed", zap.Error(err))
		reply = fmt.Sprintf("Error calling LLM: %v", err)
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(s.deps.Health))
	for name, check := range s.deps.Health {
		if err := check(r.Context()); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}
	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": checks})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest),
		errors.Is(err, graph.ErrInvalidWorkflow),
		errors.Is(err, graph.ErrNoEntryNode),
		errors.Is(err, ingestion.ErrUnsupportedType),
		errors.Is(err, ingestion.ErrEmptyDocument):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
