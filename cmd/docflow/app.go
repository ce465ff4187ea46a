package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/api"
	"github.com/Divas-Gupta30/docflow/internal/config"
	"github.com/Divas-Gupta30/docflow/internal/graph"
	"github.com/Divas-Gupta30/docflow/internal/ingestion"
	"github.com/Divas-Gupta30/docflow/internal/llm"
	"github.com/Divas-Gupta30/docflow/internal/log"
	"github.com/Divas-Gupta30/docflow/internal/memory"
	"github.com/Divas-Gupta30/docflow/internal/processing"
	"github.com/Divas-Gupta30/docflow/internal/storage"
	"github.com/Divas-Gupta30/docflow/internal/websearch"
)

// app holds every wired component. Optional ones stay nil when their
// backing service is not configured or not reachable.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	redis     *redis.Client
	pool      *pgxpool.Pool
	db        *sql.DB
	vectors   *storage.VectorStore
	workflows *storage.WorkflowStore
	indexer   *ingestion.Indexer
	memory    *memory.Store
	generator graph.Generator
	engine    *graph.Engine
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := log.InitLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp connects to the configured services. With requireVectors set a
// vector store that cannot be reached is an error; otherwise retrieval and
// indexing are disabled and the rest keeps working.
func newApp(ctx context.Context, cfg *config.Config, requireVectors bool) (*app, error) {
	a := &app{cfg: cfg, logger: log.Component("main")}

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.logger.Warn("failed to connect to Redis", zap.Error(err))
		} else {
			a.logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var backend memory.Backend = memory.NewInMemoryBackend(cfg.Memory.MaxSessions, cfg.Memory.SessionTTL)
	if cfg.Memory.Backend == "redis" {
		if a.redis == nil {
			return nil, errors.New("memory backend redis requires redis.addr")
		}
		backend = memory.NewRedisBackend(a.redis, cfg.Memory.SessionTTL)
	}
	a.memory = memory.NewStore(backend, cfg.Memory.MaxHistory)

	if err := a.connectVectors(ctx); err != nil {
		if requireVectors {
			a.Close()
			return nil, err
		}
		a.logger.Warn("vector store unavailable, retrieval disabled", zap.Error(err))
	}

	if cfg.Database.URL != "" {
		db, err := storage.OpenSQL(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.db = db
		a.workflows = storage.NewWorkflowStore(db, cfg.Database.Driver)
		if err := a.workflows.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.generator = a.newGenerator()

	// A nil *redis.Client must not reach websearch.New as a non-nil interface.
	var cache redis.Cmdable
	if a.redis != nil {
		cache = a.redis
	}
	web, err := websearch.New(cfg.WebSearch, cache)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := graph.Dependencies{
		Generator: a.generator,
		Web:       web,
		Memory:    a.memory,
	}
	if a.vectors != nil {
		deps.Retriever = a.vectors
	}
	a.engine = graph.NewEngine(graph.NewRegistry(deps, a.settings()), a.memory)
	return a, nil
}

func (a *app) connectVectors(ctx context.Context) error {
	cfg := a.cfg
	pool, err := storage.OpenPool(ctx, cfg.VectorStore.URL)
	if err != nil {
		return err
	}
	embedder, err := processing.NewOllamaEmbedder(cfg.Embeddings.BaseURL, cfg.Embeddings.Model, cfg.VectorStore.Dimensions)
	if err != nil {
		pool.Close()
		return err
	}
	vectors := storage.NewVectorStore(pool, embedder, cfg.VectorStore.Dimensions)
	if err := vectors.EnsureSchema(ctx); err != nil {
		pool.Close()
		return err
	}
	a.pool = pool
	a.vectors = vectors
	a.indexer = ingestion.NewIndexer(
		processing.NewChunker(cfg.Chunking.Size, cfg.Chunking.Overlap),
		vectors,
		ingestion.WithExtractor(ingestion.NewExtractor(cfg.Chunking.OCRLanguages...)),
	)
	return nil
}

func (a *app) newGenerator() graph.Generator {
	cfg := a.cfg.LLM
	router := &llm.Router{
		Gemini: llm.NewGemini(cfg.GeminiAPIKey, cfg.DefaultModel, llm.WithMaxTokens(cfg.MaxTokens)),
	}
	if cfg.OllamaURL != "" {
		ollama, err := llm.NewOllama(cfg.OllamaURL, "")
		if err != nil {
			a.logger.Warn("ollama provider disabled", zap.Error(err))
		} else {
			router.Ollama = ollama
		}
	}
	return router
}

func (a *app) settings() graph.Settings {
	s := graph.DefaultSettings()
	s.TopK = a.cfg.VectorStore.TopK
	s.DefaultModel = a.cfg.LLM.DefaultModel
	s.DefaultTemperature = a.cfg.LLM.Temperature
	s.RetrievalTimeout = a.cfg.RetrievalTimeout
	s.LLMTimeout = a.cfg.LLM.Timeout
	s.WebSearchTimeout = a.cfg.WebSearch.Timeout
	if a.cfg.WebSearch.MaxResults > 0 {
		s.WebResults = a.cfg.WebSearch.MaxResults
	}
	return s
}

func (a *app) healthChecks() map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{}
	if a.pool != nil {
		checks["vector_store"] = func(ctx context.Context) error { return a.pool.Ping(ctx) }
	}
	if a.db != nil {
		checks["database"] = func(ctx context.Context) error { return a.db.PingContext(ctx) }
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	return checks
}

func (a *app) apiServer() *api.Server {
	deps := api.Deps{
		Engine: a.engine,
		Memory: a.memory,
		Chat:   a.generator,
		Health: a.healthChecks(),
	}
	if a.workflows != nil {
		deps.Workflows = a.workflows
	}
	if a.indexer != nil {
		deps.Indexer = a.indexer
	}
	return api.NewServer(deps, api.Options{
		UploadDir:       a.cfg.Server.UploadDir,
		MaxUploadBytes:  a.cfg.Server.MaxUploadBytes,
		AllowedOrigins:  a.cfg.Server.AllowedOrigins,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
		ChatModel:       a.cfg.LLM.DefaultModel,
		ChatTemperature: a.cfg.LLM.Temperature,
	})
}

func (a *app) Close() {
	if a.workflows != nil {
		if err := a.workflows.Close(); err != nil {
			a.logger.Warn("closing database", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("closing redis", zap.Error(err))
		}
	}
	log.Sync()
}
