package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/cheerforge/cheerforge/internal/api/shared"
	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/platform/logger"
	"github.com/cheerforge/cheerforge/internal/store"
	"github.com/cheerforge/cheerforge/internal/task"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TaskSubmitter accepts generation tasks. *task.Engine implements it.
type TaskSubmitter interface {
	Submit(ctx context.Context, taskID string, kind domain.Kind, prompt string, params map[string]any) (*task.Ack, error)
}

// StatusReader reads the latest status of a task. *task.StatusLookup
// implements it.
type StatusReader interface {
	Lookup(ctx context.Context, taskID string) (*domain.StatusRecord, error)
}

// Sample task submitted by POST /api/v1/test/generate.
const (
	testPrompt = "Cheer on the home team"
	testStyle  = "motivational"
)

// GenerationHandler serves task submission and task status requests.
type GenerationHandler struct {
	engine    TaskSubmitter
	statuses  StatusReader
	validator *validator.Validate
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(engine TaskSubmitter, statuses StatusReader) *GenerationHandler {
	return &GenerationHandler{
		engine:    engine,
		statuses:  statuses,
		validator: validator.New(),
	}
}

// Generate handles POST /api/v1/generate. The task runs asynchronously; the
// response only acknowledges that it was queued.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	kind, err := domain.ParseKind(req.Type)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return
	}

	resp, ok := h.submit(w, r, req.TaskID, kind, req.Prompt, req.Parameters)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// TestGenerate handles POST /api/v1/test/generate by queueing a sample slogan
// task under a fresh ID.
func (h *GenerationHandler) TestGenerate(w http.ResponseWriter, r *http.Request) {
	taskID := uuid.NewString()
	resp, ok := h.submit(w, r, taskID, domain.KindSlogan, testPrompt, map[string]any{"style": testStyle})
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TestGenerateResponse{
		Message:    "Test generation task created",
		TestTaskID: taskID,
		Result:     resp,
	})
}

func (h *GenerationHandler) submit(
	w http.ResponseWriter,
	r *http.Request,
	taskID string,
	kind domain.Kind,
	prompt string,
	params map[string]any,
) (GenerateResponse, bool) {
	ack, err := h.engine.Submit(r.Context(), taskID, kind, prompt, params)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return GenerateResponse{}, false
	}

	logger.FromContext(r.Context()).Info("generation task accepted",
		"task_id", ack.TaskID,
		"kind", kind)

	return GenerateResponse{
		Message:       "Generation task created",
		TaskID:        ack.TaskID,
		Status:        string(ack.Status),
		EstimatedTime: EstimatedGenerationSeconds,
	}, true
}

// GetTask handles GET /api/v1/task/{taskID}.
func (h *GenerationHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return
	}

	rec, err := h.statuses.Lookup(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to get task status", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskStatusFromRecord(rec))
}
