package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"

	"sentinlk/internal/config"
	"sentinlk/internal/infrastructure/broadcast"
	"sentinlk/internal/infrastructure/embedding"
	"sentinlk/internal/infrastructure/geo"
	"sentinlk/internal/infrastructure/llm"
	"sentinlk/internal/infrastructure/parser"
	"sentinlk/internal/infrastructure/scheduler"
	"sentinlk/internal/infrastructure/storage"
	"sentinlk/internal/infrastructure/weather"
	"sentinlk/internal/logging"
	"sentinlk/internal/memory"
	"sentinlk/internal/novelty"
	"sentinlk/internal/ports"
	"sentinlk/internal/scanner"
	"sentinlk/internal/scoring"
	"sentinlk/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	hub       *broadcast.Hub
	wsServer  *http.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	var db *sql.DB
	var repository ports.SignalRepository
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		repository = storage.NewPostgresRepository(db)
	} else {
		baseLogger.Warn("no database configured, signals will not be persisted")
		repository = storage.NewPostgresRepository(nil)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewHTMLScanner(nil))
	registry.Register(parser.NewRSSScanner(nil))

	sources, err := parser.BuildSources(registry, cfg.Sites, baseLogger.With("component", "source"))
	if err != nil {
		return nil, fmt.Errorf("build sources: %w", err)
	}

	embedder := embedding.NewClient(cfg.Embedding.Endpoint, cfg.Embedding.APIKey)
	cache := memory.NewEmbeddingCache(cfg.Novelty.CacheCapacity)
	seen := memory.NewSeenLinks()

	noveltyClassifier := novelty.NewClassifier(
		embedder,
		cache,
		cfg.Novelty.DuplicateThreshold,
		cfg.Novelty.CorroborationFloor,
		baseLogger.With("component", "novelty"),
	)

	engine := scoring.NewEngine(
		llm.NewGroqClassifier(cfg.Classifier, baseLogger.With("component", "classifier")),
		geo.NewGazetteer(),
		scoring.EngineConfig{
			RescueThreshold: cfg.Scoring.RescueThreshold,
			InfraBonus:      cfg.Scoring.InfraBonus,
			SwarmBonus:      cfg.Scoring.SwarmBonus,
			ScoreFloor:      cfg.Scoring.ScoreFloor,
		},
		baseLogger.With("component", "engine"),
	)

	var hub *broadcast.Hub
	var broadcaster ports.Broadcaster
	var wsServer *http.Server
	if cfg.Broadcast.Listen != "" {
		hub = broadcast.NewHub(baseLogger.With("component", "broadcast"))
		broadcaster = hub
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		wsServer = &http.Server{Addr: cfg.Broadcast.Listen, Handler: mux}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:      sources,
		Repository:   repository,
		Novelty:      noveltyClassifier,
		Engine:       engine,
		Weather:      weather.NewClient(cfg.Weather.APIKey, cfg.Weather.Lat, cfg.Weather.Lon),
		Broadcaster:  broadcaster,
		Embedder:     embedder,
		Cache:        cache,
		Seen:         seen,
		SeenLinkSeed: cfg.Pipeline.SeenLinkSeed,
		CacheWarmup:  cfg.Pipeline.CacheWarmup,
		Logger:       baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewIntervalScheduler(cfg.Pipeline.Interval)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(driver, pipeline),
		hub:       hub,
		wsServer:  wsServer,
	}, nil
}

// Run seeds the caches, starts the broadcast listener and the ingestion
// loop, and blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	a.pipeline.Warmup(ctx)

	if a.wsServer != nil {
		go func() {
			a.logger.Info("broadcast hub listening", "addr", a.wsServer.Addr)
			if err := a.wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Error("broadcast listener stopped", "error", err)
			}
		}()
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return a.shutdown()
}

func (a *Application) shutdown() error {
	_ = a.scheduler.Stop(context.Background())

	if a.wsServer != nil {
		_ = a.wsServer.Close()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}
