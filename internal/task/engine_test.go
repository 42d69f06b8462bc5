package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/generation"
	"github.com/cheerforge/cheerforge/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	factory := func(ctx context.Context) (Dispatcher, error) { return generation.Set{}, nil }

	t.Run("requires store", func(t *testing.T) {
		_, err := NewEngine(DefaultEngineConfig(), EngineDeps{Generators: factory})
		assert.Error(t, err)
	})

	t.Run("requires generator factory", func(t *testing.T) {
		_, err := NewEngine(DefaultEngineConfig(), EngineDeps{Store: mocks.NewMockRecordStore()})
		assert.Error(t, err)
	})

	t.Run("invalid worker count uses default", func(t *testing.T) {
		engine, err := NewEngine(EngineConfig{WorkerCount: -3}, EngineDeps{
			Store:      mocks.NewMockRecordStore(),
			Generators: factory,
			Logger:     setupTestLogger(),
		})
		require.NoError(t, err)
		assert.Equal(t, DefaultWorkerCount, engine.WorkerCount())
		assert.False(t, engine.IsReady())
	})
}

func TestEngine_Initialize(t *testing.T) {
	t.Run("factory failure is fatal", func(t *testing.T) {
		engine, err := NewEngine(DefaultEngineConfig(), EngineDeps{
			Store: mocks.NewMockRecordStore(),
			Generators: func(ctx context.Context) (Dispatcher, error) {
				return nil, generation.ErrInvalidConfig
			},
			Logger: setupTestLogger(),
		})
		require.NoError(t, err)

		err = engine.Initialize(context.Background())
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
		assert.False(t, engine.IsReady())
	})

	t.Run("second initialize is rejected", func(t *testing.T) {
		f := newTestEngine(t, 1, mocks.MockGeneratorSet(&mocks.MockGenerator{}))
		assert.True(t, f.engine.IsReady())
		assert.ErrorIs(t, f.engine.Initialize(context.Background()), ErrEngineStarted)
	})
}

func TestEngine_SubmitBeforeInitialize(t *testing.T) {
	engine, err := NewEngine(DefaultEngineConfig(), EngineDeps{
		Store:      mocks.NewMockRecordStore(),
		Generators: func(ctx context.Context) (Dispatcher, error) { return generation.Set{}, nil },
		Logger:     setupTestLogger(),
	})
	require.NoError(t, err)

	_, err = engine.Submit(context.Background(), "t1", domain.KindSlogan, "cheer", nil)
	assert.ErrorIs(t, err, ErrEngineNotReady)
}

func TestEngine_SubmitRejectsEmptyID(t *testing.T) {
	f := newTestEngine(t, 1, mocks.MockGeneratorSet(&mocks.MockGenerator{}))

	_, err := f.engine.Submit(context.Background(), "", domain.KindSlogan, "cheer", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyTaskID)
}

func TestEngine_SloganScenario(t *testing.T) {
	slogans := generation.NewSloganGenerator(nil, generation.MustLoadPrompts(), generation.Config{}, setupTestLogger())
	f := newTestEngine(t, 2, generation.Set{Slogan: slogans})

	ack, err := f.engine.Submit(context.Background(), "t1", domain.KindSlogan, "cheer", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, &Ack{TaskID: "t1", Status: domain.StatusQueued}, ack)

	rec := f.waitForStatus(t, "t1", domain.StatusCompleted)
	assert.Equal(t, 100, rec.Progress)
	assert.Empty(t, rec.Error)

	var payload generation.SloganPayload
	require.NoError(t, json.Unmarshal(rec.Result, &payload))
	assert.Equal(t, domain.KindSlogan, payload.Type)
	assert.Len(t, payload.Slogans, 5)

	history := f.store.History("t1")
	require.NotEmpty(t, history)
	assert.Equal(t, domain.StatusQueued, history[0].Status, "first write must be the queued record")
	assert.Equal(t, []int{0, 10, 50, 100}, progressOf(history))

	cached, err := f.cache.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, cached.Status)
}

func TestEngine_ConcurrentSubmissionsDrainInIsolation(t *testing.T) {
	release := make(chan struct{})
	gen := &mocks.MockGenerator{
		GenerateFn: func(ctx context.Context, req generation.Request, progress generation.ProgressFunc) (*generation.Result, error) {
			<-release
			return &generation.Result{Payload: map[string]string{"prompt": req.Prompt}}, nil
		},
	}
	f := newTestEngine(t, 1, mocks.MockGeneratorSet(gen))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("task-%d", i)
			_, err := f.engine.Submit(context.Background(), id, domain.KindSlogan, "prompt-"+id, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return f.engine.ActiveWorkers() == 1 && f.engine.QueueDepth() == 4
	}, eventuallyTimeout, eventuallyTick)
	assert.Equal(t, 1, f.engine.WorkerCount())

	depths := []int{f.engine.QueueDepth()}
	for i := 0; i < 5; i++ {
		release <- struct{}{}
		depths = append(depths, f.engine.QueueDepth())
	}
	for i := 1; i < len(depths); i++ {
		assert.LessOrEqual(t, depths[i], depths[i-1], "queue depth increased while draining: %v", depths)
	}

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("task-%d", i)
		rec := f.waitForStatus(t, id, domain.StatusCompleted)
		assert.JSONEq(t, fmt.Sprintf(`{"prompt":"prompt-%s"}`, id), string(rec.Result))
	}
	assert.Equal(t, 0, f.engine.QueueDepth())
}

func TestEngine_FailureDoesNotStopWorker(t *testing.T) {
	gen := &mocks.MockGenerator{
		GenerateFn: func(ctx context.Context, req generation.Request, progress generation.ProgressFunc) (*generation.Result, error) {
			if req.TaskID == "t2" {
				return nil, errors.New("boom")
			}
			return &generation.Result{Payload: "ok"}, nil
		},
	}
	f := newTestEngine(t, 1, mocks.MockGeneratorSet(gen))

	_, err := f.engine.Submit(context.Background(), "t2", domain.KindSlogan, "cheer", nil)
	require.NoError(t, err)

	failed := f.waitForStatus(t, "t2", domain.StatusFailed)
	assert.Equal(t, 0, failed.Progress)
	assert.Contains(t, failed.Error, "boom")
	assert.Empty(t, failed.Result)

	_, err = f.engine.Submit(context.Background(), "t3", domain.KindSlogan, "cheer", nil)
	require.NoError(t, err)
	f.waitForStatus(t, "t3", domain.StatusCompleted)
}

func TestEngine_UnsupportedKindFailsWithoutGenerator(t *testing.T) {
	gen := &mocks.MockGenerator{}
	f := newTestEngine(t, 1, mocks.MockGeneratorSet(gen))

	ack, err := f.engine.Submit(context.Background(), "v1", domain.Kind("video"), "cheer", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, ack.Status)

	rec := f.waitForStatus(t, "v1", domain.StatusFailed)
	assert.Contains(t, rec.Error, generation.ErrUnsupportedKind.Error())
	assert.Equal(t, 0, gen.CallCount())

	history := f.store.History("v1")
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusQueued, history[0].Status)
	assert.Equal(t, domain.StatusFailed, history[1].Status)
}

func TestEngine_CacheFailureDoesNotBlockTerminalWrite(t *testing.T) {
	f := newTestEngine(t, 1, mocks.MockGeneratorSet(&mocks.MockGenerator{}))
	f.cache.PutFn = func(ctx context.Context, rec *domain.StatusRecord, ttl time.Duration) error {
		return errors.New("cache unavailable")
	}

	_, err := f.engine.Submit(context.Background(), "t1", domain.KindSlogan, "cheer", nil)
	require.NoError(t, err)

	rec := f.waitForStatus(t, "t1", domain.StatusCompleted)
	assert.Equal(t, 100, rec.Progress)
	_, err = f.cache.Get(context.Background(), "t1")
	assert.Error(t, err)
}

func TestEngine_ProgressNeverDecreases(t *testing.T) {
	gen := &mocks.MockGenerator{Milestones: []int{30, 60, 30, 90, 100, 120}}
	f := newTestEngine(t, 1, mocks.MockGeneratorSet(gen))

	_, err := f.engine.Submit(context.Background(), "t1", domain.KindBanner, "cheer", nil)
	require.NoError(t, err)
	f.waitForStatus(t, "t1", domain.StatusCompleted)

	assert.Equal(t, []int{0, 10, 30, 60, 90, 99, 100}, progressOf(f.store.History("t1")))
}

func TestEngine_RecoversGeneratorPanic(t *testing.T) {
	gen := &mocks.MockGenerator{
		GenerateFn: func(ctx context.Context, req generation.Request, progress generation.ProgressFunc) (*generation.Result, error) {
			if req.TaskID == "bad" {
				panic("nil design")
			}
			return &generation.Result{Payload: "ok"}, nil
		},
	}
	f := newTestEngine(t, 1, mocks.MockGeneratorSet(gen))

	_, err := f.engine.Submit(context.Background(), "bad", domain.KindBanner, "cheer", nil)
	require.NoError(t, err)
	rec := f.waitForStatus(t, "bad", domain.StatusFailed)
	assert.Contains(t, rec.Error, "generator panicked")

	_, err = f.engine.Submit(context.Background(), "good", domain.KindBanner, "cheer", nil)
	require.NoError(t, err)
	f.waitForStatus(t, "good", domain.StatusCompleted)
}

func TestEngine_DuplicateIDsAreIndependentAttempts(t *testing.T) {
	gen := &mocks.MockGenerator{}
	f := newTestEngine(t, 1, mocks.MockGeneratorSet(gen))

	for i := 0; i < 2; i++ {
		_, err := f.engine.Submit(context.Background(), "dup", domain.KindSlogan, fmt.Sprintf("p%d", i), nil)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return gen.CallCount() == 2 && f.store.Status("dup") == domain.StatusCompleted
	}, eventuallyTimeout, eventuallyTick)

	calls := gen.Calls()
	assert.Equal(t, "p0", calls[0].Prompt)
	assert.Equal(t, "p1", calls[1].Prompt)
}

func TestEngine_ShutdownFinishesInFlightAndFailsQueued(t *testing.T) {
	started := make(chan string, 2)
	release := make(chan struct{})
	gen := &mocks.MockGenerator{
		GenerateFn: func(ctx context.Context, req generation.Request, progress generation.ProgressFunc) (*generation.Result, error) {
			started <- req.TaskID
			<-release
			return &generation.Result{Payload: "done"}, ctx.Err()
		},
	}
	f := newTestEngine(t, 1, mocks.MockGeneratorSet(gen))

	_, err := f.engine.Submit(context.Background(), "in-flight", domain.KindSlogan, "cheer", nil)
	require.NoError(t, err)
	assert.Equal(t, "in-flight", <-started)

	_, err = f.engine.Submit(context.Background(), "waiting", domain.KindSlogan, "cheer", nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- f.engine.Shutdown(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("shutdown returned while a task was still in flight")
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, f.engine.IsReady())

	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(eventuallyTimeout):
		t.Fatal("shutdown did not return after in-flight task finished")
	}

	assert.Equal(t, domain.StatusCompleted, f.store.Status("in-flight"))
	assert.Equal(t, 1, gen.CallCount())

	waiting, err := f.store.GetStatus(context.Background(), "waiting")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, waiting.Status)
	assert.Equal(t, 0, waiting.Progress)
	assert.Equal(t, ErrEngineShuttingDown.Error(), waiting.Error)
	require.NotNil(t, waiting.CompletedAt)

	cached, err := f.cache.Get(context.Background(), "waiting")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, cached.Status)

	_, err = f.engine.Submit(context.Background(), "late", domain.KindSlogan, "cheer", nil)
	assert.ErrorIs(t, err, ErrEngineNotReady)
	assert.NoError(t, f.engine.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestEngine_SubmitQueuedWriteSharesOneTimeout(t *testing.T) {
	const writeTimeout = 50 * time.Millisecond

	recordStore := mocks.NewMockRecordStore()
	cache := mocks.NewMockStatusCache()
	var storeDeadline, cacheDeadline time.Time
	recordStore.UpsertStatusFn = func(ctx context.Context, rec *domain.StatusRecord) error {
		if rec.Status == domain.StatusQueued {
			storeDeadline, _ = ctx.Deadline()
		}
		<-ctx.Done()
		return ctx.Err()
	}
	cache.PutFn = func(ctx context.Context, rec *domain.StatusRecord, ttl time.Duration) error {
		if rec.Status == domain.StatusQueued {
			cacheDeadline, _ = ctx.Deadline()
		}
		<-ctx.Done()
		return ctx.Err()
	}

	engine, err := NewEngine(EngineConfig{WorkerCount: 1, WriteTimeout: writeTimeout}, EngineDeps{
		Store: recordStore,
		Cache: cache,
		Generators: func(ctx context.Context) (Dispatcher, error) { return generation.Set{}, nil },
		Logger:     setupTestLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, engine.Initialize(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventuallyTimeout)
		defer cancel()
		_ = engine.Shutdown(ctx)
	})

	start := time.Now()
	_, err = engine.Submit(context.Background(), "slow-backends", domain.KindSlogan, "cheer", nil)
	elapsed := time.Since(start)
	require.NoError(t, err)

	require.False(t, storeDeadline.IsZero())
	assert.Equal(t, storeDeadline, cacheDeadline, "store and cache writes share one deadline")
	assert.Less(t, elapsed, 2*writeTimeout)
}

func TestEngine_ShutdownTimeout(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	gen := &mocks.MockGenerator{
		GenerateFn: func(ctx context.Context, req generation.Request, progress generation.ProgressFunc) (*generation.Result, error) {
			close(entered)
			<-release
			return &generation.Result{Payload: "done"}, nil
		},
	}
	f := newTestEngine(t, 1, mocks.MockGeneratorSet(gen))
	defer close(release)

	_, err := f.engine.Submit(context.Background(), "slow", domain.KindSlogan, "cheer", nil)
	require.NoError(t, err)
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = f.engine.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, f.engine.ActiveWorkers())
}

func TestEngine_ShutdownBeforeInitialize(t *testing.T) {
	engine, err := NewEngine(DefaultEngineConfig(), EngineDeps{
		Store:      mocks.NewMockRecordStore(),
		Generators: func(ctx context.Context) (Dispatcher, error) { return generation.Set{}, nil },
		Logger:     setupTestLogger(),
	})
	require.NoError(t, err)

	assert.NoError(t, engine.Shutdown(context.Background()))
	assert.ErrorIs(t, engine.Initialize(context.Background()), ErrEngineStarted)
}
