// Package api exposes workflow execution, saved workflows, document upload
// and conversation history over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/graph"
	"github.com/Divas-Gupta30/docflow/internal/ingestion"
	"github.com/Divas-Gupta30/docflow/internal/log"
	"github.com/Divas-Gupta30/docflow/internal/memory"
	"github.com/Divas-Gupta30/docflow/internal/storage"
)

// WorkflowRepository persists saved workflows and chat logs.
type WorkflowRepository interface {
	Create(ctx context.Context, name string, wf graph.Workflow) (*storage.SavedWorkflow, error)
	Get(ctx context.Context, id string) (*storage.SavedWorkflow, error)
	List(ctx context.Context) ([]storage.SavedWorkflow, error)
	Delete(ctx context.Context, id string) error
	LogChat(ctx context.Context, entry storage.ChatLog) (*storage.ChatLog, error)
}

// DocumentIndexer indexes an uploaded file stored at path.
type DocumentIndexer interface {
	IndexFile(ctx context.Context, path, displayName string) (*ingestion.IndexResult, error)
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Deps are the components behind the handlers. Workflows, Indexer and Chat
// may be nil; their endpoints then answer 503.
type Deps struct {
	Engine    *graph.Engine
	Memory    *memory.Store
	Workflows WorkflowRepository
	Indexer   DocumentIndexer
	Chat      graph.Generator
	Health    map[string]HealthCheck
}

type Options struct {
	UploadDir       string
	MaxUploadBytes  int64
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	ChatModel       string
	ChatTemperature float64
}

type Server struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
}

func NewServer(deps Deps, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "./uploads"
	}
	return &Server{deps: deps, opts: opts, logger: log.Component("api")}
}

// Handler returns the routed, instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.instrument)

	wf := router.PathPrefix("/api/workflows").Subrouter()
	wf.HandleFunc("/build", s.handleBuild).Methods(http.MethodPost)
	wf.HandleFunc("/run", s.handleRun).Methods(http.MethodPost)
	wf.HandleFunc("", s.handleSaveWorkflow).Methods(http.MethodPost)
	wf.HandleFunc("", s.handleListWorkflows).Methods(http.MethodGet)
	wf.HandleFunc("/{id}", s.handleGetWorkflow).Methods(http.MethodGet)
	wf.HandleFunc("/{id}", s.handleDeleteWorkflow).Methods(http.MethodDelete)
	wf.HandleFunc("/{id}/run", s.handleRunSaved).Methods(http.MethodPost)

	router.HandleFunc("/api/conversations/{session_id}", s.handleConversation).Methods(http.MethodGet)
	router.HandleFunc("/api/documents/upload", s.handleUpload).Methods(http.MethodPost)
	router.HandleFunc("/api/llm", s.handleChat).Methods(http.MethodPost)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler())

	return s.cors(router)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("docflow API starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server exited")
	return nil
}
