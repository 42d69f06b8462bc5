package main

import (
	"log/slog"
	"net/http"

	"github.com/cheerforge/cheerforge/internal/api"
	apiMiddleware "github.com/cheerforge/cheerforge/internal/api/middleware"
	"github.com/cheerforge/cheerforge/internal/service/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routerDeps are the collaborators mounted by newRouter. JWTService may be
// nil, which leaves the write routes unauthenticated.
type routerDeps struct {
	Logger     *slog.Logger
	Submitter  api.TaskSubmitter
	Statuses   api.StatusReader
	Engine     api.EngineStats
	Models     map[string]api.ModelStatus
	Health     api.HealthDeps
	JWTService auth.JWTService
	Gatherer   prometheus.Gatherer
}

// setupRouter builds the router from the application's components.
func (app *application) setupRouter() http.Handler {
	return newRouter(routerDeps{
		Logger:     app.logger,
		Submitter:  app.engine,
		Statuses:   app.lookup,
		Engine:     app.engine,
		Models:     app.modelStatus(),
		Health:     app.healthDeps(),
		JWTService: app.jwtService,
		Gatherer:   app.registry,
	})
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(deps.Logger))
	r.Use(middleware.Recoverer)

	genHandler := api.NewGenerationHandler(deps.Submitter, deps.Statuses)
	statusHandler := api.NewStatusHandler(deps.Engine, deps.Models, deps.Health)
	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.JWTService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/generate", genHandler.Generate)
			r.Post("/test/generate", genHandler.TestGenerate)
		})

		r.Get("/task/{taskID}", genHandler.GetTask)
		r.Get("/queue/status", statusHandler.QueueStatus)
		r.Get("/models/status", statusHandler.ModelsStatus)
		r.Get("/health", statusHandler.Health)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			deps.Logger.Error("failed to write health check response", "error", err)
		}
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
