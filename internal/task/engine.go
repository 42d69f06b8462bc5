package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/generation"
	"github.com/cheerforge/cheerforge/internal/metrics"
	"github.com/cheerforge/cheerforge/internal/store"
)

// DefaultWorkerCount is the number of workers started when none is configured.
const DefaultWorkerCount = 10

// Dispatcher resolves the generator for a task kind. generation.Set
// implements it.
type Dispatcher interface {
	For(kind domain.Kind) (generation.Generator, error)
}

// DispatcherFactory builds the generator bindings during Initialize. It
// returns an error only when a mandatory integration cannot be constructed.
type DispatcherFactory func(ctx context.Context) (Dispatcher, error)

// EngineConfig holds configuration for the task engine
type EngineConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	// If zero or negative, defaults to DefaultWorkerCount
	WorkerCount int

	// StatusTTL is how long status snapshots live in the cache
	StatusTTL time.Duration

	// WriteTimeout bounds each individual store or cache write
	WriteTimeout time.Duration
}

// DefaultEngineConfig returns an EngineConfig with reasonable defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		WorkerCount:  DefaultWorkerCount,
		StatusTTL:    DefaultStatusTTL,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// EngineDeps are the collaborators of the engine. Cache and Metrics may be nil.
type EngineDeps struct {
	Store      store.TaskRecordStore
	Cache      store.StatusCache
	Generators DispatcherFactory
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	// Now is the clock used for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Ack is returned by Submit once a task has been queued.
type Ack struct {
	TaskID string
	Status domain.Status
}

type engineState int

const (
	stateNew engineState = iota
	stateRunning
	stateStopped
)

// Engine owns the task queue and the worker pool. It is created once at
// process start, initialized, and shut down when the process stops.
//
// On shutdown, tasks already being processed run to completion and write
// their terminal status. Tasks still waiting in the queue are never started;
// each is marked failed with ErrEngineShuttingDown.
type Engine struct {
	cfg        EngineConfig
	queue      *TaskQueue
	propagator *StatusPropagator
	factory    DispatcherFactory
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time

	mu         sync.RWMutex
	state      engineState
	dispatcher Dispatcher
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	active     atomic.Int64
}

// NewEngine creates an engine. It does not start any workers; call Initialize.
func NewEngine(cfg EngineConfig, deps EngineDeps) (*Engine, error) {
	if deps.Store == nil {
		return nil, errors.New("task record store cannot be nil")
	}
	if deps.Generators == nil {
		return nil, errors.New("generator factory cannot be nil")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_engine")

	if cfg.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", cfg.WorkerCount,
			"default_count", DefaultWorkerCount)
		cfg.WorkerCount = DefaultWorkerCount
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	queue := NewTaskQueue(logger)
	queue.OnDepthChange(deps.Metrics.SetQueueDepth)

	return &Engine{
		cfg:        cfg,
		queue:      queue,
		propagator: NewStatusPropagator(deps.Store, deps.Cache, cfg.StatusTTL, cfg.WriteTimeout, deps.Metrics, logger),
		factory:    deps.Generators,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        now,
	}, nil
}

// Initialize builds the generator bindings, starts the workers and marks the
// engine ready. It fails if the generator factory fails, and returns
// ErrEngineStarted if called more than once.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateNew {
		return ErrEngineStarted
	}

	dispatcher, err := e.factory(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize generators: %w", err)
	}
	if dispatcher == nil {
		return errors.New("generator factory returned no dispatcher")
	}
	e.dispatcher = dispatcher

	poolCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	for i := 0; i < e.cfg.WorkerCount; i++ {
		e.wg.Add(1)
		go e.worker(poolCtx, fmt.Sprintf("worker-%d", i))
	}

	e.state = stateRunning
	e.logger.Info("task engine initialized", "worker_count", e.cfg.WorkerCount)
	return nil
}

// IsReady reports whether the engine is initialized and not shut down.
func (e *Engine) IsReady() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == stateRunning
}

// Submit queues a new task and returns without waiting for it to run. A
// queued record is written first (best effort) so that an immediate poll
// observes the task. The store and cache writes for that record share a
// single WriteTimeout budget, which bounds how long Submit can block on slow
// backends. Kind is not validated here: a kind without a generator fails when
// a worker picks the task up.
func (e *Engine) Submit(
	ctx context.Context,
	taskID string,
	kind domain.Kind,
	prompt string,
	params map[string]any,
) (*Ack, error) {
	if !e.IsReady() {
		return nil, ErrEngineNotReady
	}

	desc, err := domain.NewTaskDescriptor(taskID, kind, prompt, params, e.now())
	if err != nil {
		return nil, err
	}

	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.WriteTimeout)
	e.propagator.Propagate(qctx, queuedRecord(desc))
	cancel()

	if err := e.queue.Enqueue(desc); err != nil {
		if errors.Is(err, ErrQueueClosed) {
			return nil, ErrEngineNotReady
		}
		return nil, err
	}

	e.metrics.TaskSubmitted(kind)
	e.logger.InfoContext(ctx, "task queued", "task_id", desc.ID, "kind", desc.Kind)

	return &Ack{TaskID: desc.ID, Status: domain.StatusQueued}, nil
}

// QueueDepth returns the number of tasks waiting for a worker.
func (e *Engine) QueueDepth() int {
	return e.queue.Len()
}

// WorkerCount returns the configured number of workers.
func (e *Engine) WorkerCount() int {
	return e.cfg.WorkerCount
}

// ActiveWorkers returns the number of workers currently processing a task.
func (e *Engine) ActiveWorkers() int {
	return int(e.active.Load())
}

// Shutdown stops accepting tasks, marks the tasks still waiting in the queue
// as failed, and waits for in-flight tasks to finish. If ctx expires first,
// Shutdown returns ctx's error and the remaining workers keep running until
// their current task ends.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case stateNew:
		e.state = stateStopped
		e.mu.Unlock()
		return nil
	case stateStopped:
		e.mu.Unlock()
		return nil
	}
	e.state = stateStopped
	e.cancel()
	dropped := e.queue.Close()
	e.mu.Unlock()

	for _, desc := range dropped {
		log := e.logger.With("task_id", desc.ID, "kind", desc.Kind)
		log.Warn("failing queued task on shutdown")
		att := newAttempt(desc, e.propagator, e.now, log)
		att.fail(ctx, ErrEngineShuttingDown)
		e.metrics.TaskFinished(desc.Kind, att.status, e.now().Sub(desc.CreatedAt))
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("task engine stopped", "dropped", len(dropped))
		return nil
	case <-ctx.Done():
		e.logger.Warn("task engine shutdown timed out",
			"active_workers", e.ActiveWorkers(),
			"error", ctx.Err())
		return fmt.Errorf("task engine shutdown: %w", ctx.Err())
	}
}
