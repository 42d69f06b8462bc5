package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/store"
	"github.com/cheerforge/cheerforge/internal/task"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// submitCall records one call to fakeEngine.Submit.
type submitCall struct {
	TaskID string
	Kind   domain.Kind
	Prompt string
	Params map[string]any
}

// fakeEngine implements TaskSubmitter and EngineStats.
type fakeEngine struct {
	SubmitFn func(ctx context.Context, taskID string, kind domain.Kind, prompt string, params map[string]any) (*task.Ack, error)

	Ready   bool
	Depth   int
	Workers int
	Active  int

	mu    sync.Mutex
	calls []submitCall
}

func (f *fakeEngine) Submit(
	ctx context.Context,
	taskID string,
	kind domain.Kind,
	prompt string,
	params map[string]any,
) (*task.Ack, error) {
	f.mu.Lock()
	f.calls = append(f.calls, submitCall{TaskID: taskID, Kind: kind, Prompt: prompt, Params: params})
	f.mu.Unlock()

	if f.SubmitFn != nil {
		return f.SubmitFn(ctx, taskID, kind, prompt, params)
	}
	return &task.Ack{TaskID: taskID, Status: domain.StatusQueued}, nil
}

func (f *fakeEngine) Calls() []submitCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submitCall(nil), f.calls...)
}

func (f *fakeEngine) IsReady() bool      { return f.Ready }
func (f *fakeEngine) QueueDepth() int    { return f.Depth }
func (f *fakeEngine) WorkerCount() int   { return f.Workers }
func (f *fakeEngine) ActiveWorkers() int { return f.Active }

// fakeStatusReader serves records from a map.
type fakeStatusReader struct {
	records map[string]*domain.StatusRecord
	err     error
}

func (f *fakeStatusReader) Lookup(ctx context.Context, taskID string) (*domain.StatusRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[taskID]
	if !ok {
		return nil, store.ErrTaskRecordNotFound
	}
	return rec.Clone(), nil
}

// fakePinger returns err from Ping.
type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

// newTestRouter mounts the handlers on the paths used in production.
func newTestRouter(gen *GenerationHandler, status *StatusHandler) http.Handler {
	r := chi.NewRouter()
	if gen != nil {
		r.Post("/api/v1/generate", gen.Generate)
		r.Post("/api/v1/test/generate", gen.TestGenerate)
		r.Get("/api/v1/task/{taskID}", gen.GetTask)
	}
	if status != nil {
		r.Get("/api/v1/queue/status", status.QueueStatus)
		r.Get("/api/v1/models/status", status.ModelsStatus)
		r.Get("/api/v1/health", status.Health)
	}
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
