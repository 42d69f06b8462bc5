package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusHandler_QueueStatus(t *testing.T) {
	engine := &fakeEngine{Ready: true, Depth: 4, Workers: 10, Active: 3}
	h := newTestRouter(nil, NewStatusHandler(engine, nil, HealthDeps{}))

	rec := doJSON(t, h, http.MethodGet, "/api/v1/queue/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[QueueStatusResponse](t, rec)
	assert.Equal(t, QueueStatusResponse{QueueSize: 4, WorkerCount: 10, ActiveWorkers: 3, ServiceReady: true}, resp)
}

func TestStatusHandler_ModelsStatus(t *testing.T) {
	models := map[string]ModelStatus{"gemini": {Configured: true, Available: false}}
	h := newTestRouter(nil, NewStatusHandler(&fakeEngine{}, models, HealthDeps{}))

	rec := doJSON(t, h, http.MethodGet, "/api/v1/models/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	raw := decodeBody[map[string]any](t, rec)
	assert.Equal(t, false, raw["service_ready"])
	gemini := raw["models"].(map[string]any)["gemini"].(map[string]any)
	assert.Equal(t, true, gemini["configured"])
	assert.Equal(t, false, gemini["available"])
}

func TestStatusHandler_Health(t *testing.T) {
	down := errors.New("dial tcp 10.0.0.5:5432: connection refused")

	tests := []struct {
		name           string
		ready          bool
		db             fakePinger
		cache          *fakePinger
		expectedCode   int
		expectedStatus string
		expected       map[string]string
		queueSize      int
	}{
		{
			name:           "all healthy",
			ready:          true,
			cache:          &fakePinger{},
			expectedCode:   http.StatusOK,
			expectedStatus: "healthy",
			expected:       map[string]string{"database": "healthy", "redis": "healthy", "ai_service": "ready"},
			queueSize:      2,
		},
		{
			name:           "engine not ready",
			cache:          &fakePinger{},
			expectedCode:   http.StatusOK,
			expectedStatus: "healthy",
			expected:       map[string]string{"database": "healthy", "redis": "healthy", "ai_service": "not_ready"},
		},
		{
			name:           "database down",
			ready:          true,
			db:             fakePinger{err: down},
			cache:          &fakePinger{},
			expectedCode:   http.StatusServiceUnavailable,
			expectedStatus: "unhealthy",
			expected:       map[string]string{"database": "unhealthy", "redis": "healthy", "ai_service": "ready"},
			queueSize:      2,
		},
		{
			name:           "cache down",
			ready:          true,
			cache:          &fakePinger{err: errors.New("redis: nil")},
			expectedCode:   http.StatusOK,
			expectedStatus: "degraded",
			expected:       map[string]string{"database": "healthy", "redis": "unhealthy", "ai_service": "ready"},
			queueSize:      2,
		},
		{
			name:           "cache not configured",
			ready:          true,
			expectedCode:   http.StatusOK,
			expectedStatus: "degraded",
			expected:       map[string]string{"database": "healthy", "redis": "unhealthy", "ai_service": "ready"},
			queueSize:      2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := HealthDeps{Database: tt.db}
			if tt.cache != nil {
				deps.Cache = *tt.cache
			}
			engine := &fakeEngine{Ready: tt.ready, Depth: 2}
			h := newTestRouter(nil, NewStatusHandler(engine, nil, deps))

			rec := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)

			assert.Equal(t, tt.expectedCode, rec.Code)
			resp := decodeBody[HealthResponse](t, rec)
			assert.Equal(t, tt.expectedStatus, resp.Status)
			assert.Equal(t, tt.expected, resp.Components)
			assert.Equal(t, tt.queueSize, resp.QueueSize)
			assert.NotContains(t, rec.Body.String(), "10.0.0.5")
		})
	}
}

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestStatusHandler_HealthTimeout(t *testing.T) {
	deps := HealthDeps{Database: slowPinger{}, Cache: fakePinger{}, Timeout: 20 * time.Millisecond}
	h := newTestRouter(nil, NewStatusHandler(&fakeEngine{Ready: true}, nil, deps))

	start := time.Now()
	rec := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
