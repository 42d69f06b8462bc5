package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cheerforge/cheerforge/internal/api"
	"github.com/cheerforge/cheerforge/internal/config"
	"github.com/cheerforge/cheerforge/internal/generation"
	"github.com/cheerforge/cheerforge/internal/metrics"
	"github.com/cheerforge/cheerforge/internal/platform/gemini"
	"github.com/cheerforge/cheerforge/internal/platform/postgres"
	"github.com/cheerforge/cheerforge/internal/platform/rediscache"
	"github.com/cheerforge/cheerforge/internal/platform/render"
	"github.com/cheerforge/cheerforge/internal/redact"
	"github.com/cheerforge/cheerforge/internal/service/auth"
	"github.com/cheerforge/cheerforge/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// modelName is the key under which the text model is reported by
// /api/v1/models/status.
const modelName = "gemini"

// application holds the process-wide dependencies. It is built once by
// newApplication and torn down by shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db          *sql.DB
	recordStore *postgres.GenerationStore
	cache       *rediscache.StatusCache

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// textModel stays nil when no API key is configured, in which case the
	// recipes run in simulated mode.
	textModel *gemini.TextModel
	renderer  *render.Renderer

	engine     *task.Engine
	lookup     *task.StatusLookup
	jwtService auth.JWTService
}

// newApplication wires every component and starts the task engine. A
// database failure is fatal; a Redis failure only disables the cache until
// it becomes reachable.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if err := app.setupDatabase(ctx); err != nil {
		return nil, err
	}

	app.setupCache(ctx)

	if err := app.setupMetrics(); err != nil {
		app.cleanup()
		return nil, err
	}

	if cfg.Auth.Enabled() {
		svc, err := auth.NewJWTService(cfg.Auth)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		app.jwtService = svc
		logger.Info("bearer token authentication enabled",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	} else {
		logger.Warn("auth.jwt_secret is not set, generation endpoints are unauthenticated")
	}

	app.renderer = render.NewRenderer(cfg.Storage, logger)

	if err := app.setupEngine(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("application initialized")
	return app, nil
}

func (app *application) setupDatabase(ctx context.Context) error {
	db, err := postgres.Open(ctx, app.config.Database.URL, app.config.Database.MaxOpenConns, app.config.Database.MaxIdleConns)
	if err != nil {
		return fmt.Errorf("database unavailable: %s", redact.Error(err))
	}
	app.db = db
	app.logger.Info("database connection established")

	if app.config.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, app.logger.With("component", "migrations")); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app.recordStore = postgres.NewGenerationStore(db)
	return nil
}

func (app *application) setupCache(ctx context.Context) {
	cache, err := rediscache.Connect(ctx, app.config.Redis)
	app.cache = cache
	if err != nil {
		app.logger.Warn("redis unreachable, status reads fall back to the database",
			"addr", app.config.Redis.Addr,
			"error", redact.Error(err))
		return
	}
	app.logger.Info("redis connection established", "addr", app.config.Redis.Addr)
}

func (app *application) setupMetrics() error {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := metrics.New(app.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	app.metrics = m
	return nil
}

func (app *application) setupEngine(ctx context.Context) error {
	cfg := app.config

	engine, err := task.NewEngine(task.EngineConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		StatusTTL:    cfg.Redis.StatusTTL(),
		WriteTimeout: cfg.Task.StatusWriteTimeout(),
	}, task.EngineDeps{
		Store:      app.recordStore,
		Cache:      app.cache,
		Generators: app.buildGenerators,
		Metrics:    app.metrics,
		Logger:     app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create task engine: %w", err)
	}

	if err := engine.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to start task engine: %w", err)
	}
	app.engine = engine
	app.lookup = task.NewStatusLookup(app.recordStore, app.cache, app.logger)
	return nil
}

// buildGenerators is the engine's generator factory. It fails only when the
// text model is mandatory and cannot be constructed.
func (app *application) buildGenerators(ctx context.Context) (task.Dispatcher, error) {
	llm := app.config.LLM
	modelLogger := app.logger.With("component", "text_model")

	var textModel generation.TextModel
	switch model, err := gemini.NewTextModel(ctx, modelLogger, llm); {
	case err == nil:
		app.textModel = model
		textModel = model
		app.logger.Info("text model initialized", "model", model.Name())
	case llm.Required:
		return nil, fmt.Errorf("text model is required: %w", err)
	case llm.GeminiAPIKey == "":
		app.logger.Warn("no LLM API key configured, generators run in simulated mode")
	default:
		app.logger.Warn("text model unavailable, generators run in simulated mode",
			"error", redact.Error(err))
	}

	return generation.NewSet(textModel, app.renderer, generation.Config{
		SimulatedLatency: app.config.Task.SimulatedLatency(),
	}, app.logger), nil
}

// modelStatus reports whether the text model is configured and constructed.
func (app *application) modelStatus() map[string]api.ModelStatus {
	return map[string]api.ModelStatus{
		modelName: {
			Configured: app.config.LLM.GeminiAPIKey != "",
			Available:  app.textModel != nil,
		},
	}
}

// healthDeps returns the pingable components. The cache is always probed
// when a client exists, since it may recover after start.
func (app *application) healthDeps() api.HealthDeps {
	deps := api.HealthDeps{}
	if app.recordStore != nil {
		deps.Database = app.recordStore
	}
	if app.cache != nil {
		deps.Cache = app.cache
	}
	return deps
}

// Run serves HTTP until ctx is canceled, then shuts the server and the engine
// down within the configured shutdown timeout.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	err := app.startHTTPServer(ctx, router)
	app.cleanup()
	return err
}

// cleanup releases connections. It is safe to call on a partially built
// application.
func (app *application) cleanup() {
	var errs []error
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Error("error releasing resources", "error", err)
	}
	app.logger.Info("application shutdown completed")
}
