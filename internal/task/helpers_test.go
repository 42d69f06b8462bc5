package task

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/generation"
	"github.com/cheerforge/cheerforge/internal/mocks"
	"github.com/stretchr/testify/require"
)

const (
	eventuallyTimeout = 2 * time.Second
	eventuallyTick    = 5 * time.Millisecond
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newDescriptor(t *testing.T, id string, kind domain.Kind) *domain.TaskDescriptor {
	t.Helper()
	desc, err := domain.NewTaskDescriptor(id, kind, "cheer", nil, time.Now())
	require.NoError(t, err)
	return desc
}

type engineFixture struct {
	engine *Engine
	store  *mocks.MockRecordStore
	cache  *mocks.MockStatusCache
}

// newTestEngine builds and initializes an engine dispatching to set. The
// engine is shut down when the test ends.
func newTestEngine(t *testing.T, workers int, set generation.Set) *engineFixture {
	t.Helper()

	f := &engineFixture{
		store: mocks.NewMockRecordStore(),
		cache: mocks.NewMockStatusCache(),
	}
	engine, err := NewEngine(EngineConfig{WorkerCount: workers}, EngineDeps{
		Store: f.store,
		Cache: f.cache,
		Generators: func(ctx context.Context) (Dispatcher, error) {
			return set, nil
		},
		Logger: setupTestLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, engine.Initialize(context.Background()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventuallyTimeout)
		defer cancel()
		_ = engine.Shutdown(ctx)
	})

	f.engine = engine
	return f
}

func (f *engineFixture) waitForStatus(t *testing.T, taskID string, want domain.Status) *domain.StatusRecord {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.store.Status(taskID) == want
	}, eventuallyTimeout, eventuallyTick, "task %s never reached %s", taskID, want)

	rec, err := f.store.GetStatus(context.Background(), taskID)
	require.NoError(t, err)
	return rec
}
