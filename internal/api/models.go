package api

import (
	"encoding/json"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
)

// EstimatedGenerationSeconds is the completion estimate reported to clients.
const EstimatedGenerationSeconds = 30

// GenerateRequest is the payload of POST /api/v1/generate.
type GenerateRequest struct {
	TaskID     string         `json:"task_id"    validate:"required,max=128"`
	Type       string         `json:"type"       validate:"required,oneof=banner slogan emoji"`
	Prompt     string         `json:"prompt"     validate:"required,min=1,max=1000"`
	Parameters map[string]any `json:"parameters"`
}

// GenerateResponse acknowledges a queued task.
type GenerateResponse struct {
	Message       string `json:"message"`
	TaskID        string `json:"task_id"`
	Status        string `json:"status"`
	EstimatedTime int    `json:"estimated_time"`
}

// TaskStatusResponse is the body of GET /api/v1/task/{taskID}. Result and
// Error serialize as null until the task reaches a terminal status.
type TaskStatusResponse struct {
	TaskID           string          `json:"task_id"`
	Type             string          `json:"type,omitempty"`
	Status           string          `json:"status"`
	Progress         int             `json:"progress"`
	Result           json.RawMessage `json:"result"`
	Error            *string         `json:"error"`
	OutputRef        string          `json:"output_ref,omitempty"`
	GenerationTimeMS *int64          `json:"generation_time_ms,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// QueueStatusResponse is the body of GET /api/v1/queue/status.
type QueueStatusResponse struct {
	QueueSize     int  `json:"queue_size"`
	WorkerCount   int  `json:"worker_count"`
	ActiveWorkers int  `json:"active_workers"`
	ServiceReady  bool `json:"service_ready"`
}

// ModelStatus describes one configured text model.
type ModelStatus struct {
	Configured bool `json:"configured"`
	Available  bool `json:"available"`
}

// ModelsStatusResponse is the body of GET /api/v1/models/status.
type ModelsStatusResponse struct {
	Models       map[string]ModelStatus `json:"models"`
	ServiceReady bool                   `json:"service_ready"`
}

// TestGenerateResponse is the body of POST /api/v1/test/generate.
type TestGenerateResponse struct {
	Message    string           `json:"message"`
	TestTaskID string           `json:"test_task_id"`
	Result     GenerateResponse `json:"result"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	QueueSize  int               `json:"queue_size"`
}

func taskStatusFromRecord(rec *domain.StatusRecord) TaskStatusResponse {
	resp := TaskStatusResponse{
		TaskID:      rec.TaskID,
		Type:        string(rec.Kind),
		Status:      string(rec.Status),
		Progress:    rec.Progress,
		OutputRef:   rec.OutputRef,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		CompletedAt: rec.CompletedAt,
	}
	if len(rec.Result) > 0 {
		resp.Result = rec.Result
	}
	if rec.Error != "" {
		msg := rec.Error
		resp.Error = &msg
	}
	if rec.GenerationTime != nil {
		ms := rec.GenerationTime.Milliseconds()
		resp.GenerationTimeMS = &ms
	}
	return resp
}
