package api

import (
	"context"
	"net/http"
	"time"

	"github.com/cheerforge/cheerforge/internal/api/shared"
	"github.com/cheerforge/cheerforge/internal/platform/logger"
	"github.com/cheerforge/cheerforge/internal/redact"
	"github.com/cheerforge/cheerforge/internal/store"
)

// EngineStats reports the state of the worker pool. *task.Engine implements it.
type EngineStats interface {
	IsReady() bool
	QueueDepth() int
	WorkerCount() int
	ActiveWorkers() int
}

// Component health values reported by the health endpoint.
const (
	ComponentHealthy   = "healthy"
	ComponentUnhealthy = "unhealthy"
	ComponentReady     = "ready"
	ComponentNotReady  = "not_ready"
)

// DefaultHealthTimeout bounds each component ping.
const DefaultHealthTimeout = 2 * time.Second

// HealthDeps are the components probed by the health endpoint. Cache may be
// nil when Redis is not configured.
type HealthDeps struct {
	Database store.Pinger
	Cache    store.Pinger
	Timeout  time.Duration
}

// StatusHandler serves queue, model and health status.
type StatusHandler struct {
	engine EngineStats
	models map[string]ModelStatus
	health HealthDeps
}

// NewStatusHandler creates a new StatusHandler. models is reported verbatim
// by ModelsStatus.
func NewStatusHandler(engine EngineStats, models map[string]ModelStatus, health HealthDeps) *StatusHandler {
	if health.Timeout <= 0 {
		health.Timeout = DefaultHealthTimeout
	}
	if models == nil {
		models = map[string]ModelStatus{}
	}
	return &StatusHandler{
		engine: engine,
		models: models,
		health: health,
	}
}

// QueueStatus handles GET /api/v1/queue/status.
func (h *StatusHandler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, QueueStatusResponse{
		QueueSize:     h.engine.QueueDepth(),
		WorkerCount:   h.engine.WorkerCount(),
		ActiveWorkers: h.engine.ActiveWorkers(),
		ServiceReady:  h.engine.IsReady(),
	})
}

// ModelsStatus handles GET /api/v1/models/status.
func (h *StatusHandler) ModelsStatus(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, ModelsStatusResponse{
		Models:       h.models,
		ServiceReady: h.engine.IsReady(),
	})
}

// Health handles GET /api/v1/health. The response is 503 when the database
// is unreachable, and "degraded" with 200 when only the cache is.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	components := map[string]string{
		"database":   h.ping(ctx, "database", h.health.Database),
		"redis":      h.ping(ctx, "redis", h.health.Cache),
		"ai_service": ComponentNotReady,
	}

	ready := h.engine.IsReady()
	resp := HealthResponse{Status: "healthy", Components: components}
	if ready {
		components["ai_service"] = ComponentReady
		resp.QueueSize = h.engine.QueueDepth()
	}

	status := http.StatusOK
	switch {
	case components["database"] != ComponentHealthy:
		resp.Status = ComponentUnhealthy
		status = http.StatusServiceUnavailable
	case components["redis"] != ComponentHealthy:
		resp.Status = "degraded"
	}

	shared.RespondWithJSON(w, r, status, resp)
}

func (h *StatusHandler) ping(ctx context.Context, name string, p store.Pinger) string {
	if p == nil {
		return ComponentUnhealthy
	}
	ctx, cancel := context.WithTimeout(ctx, h.health.Timeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		logger.FromContext(ctx).Warn("health check failed",
			"component", name,
			"error", redact.Error(err))
		return ComponentUnhealthy
	}
	return ComponentHealthy
}
