package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/generation"
	"github.com/cheerforge/cheerforge/internal/redact"
)

// worker pulls tasks until the pool context is cancelled or the queue closes.
func (e *Engine) worker(ctx context.Context, name string) {
	defer e.wg.Done()

	e.logger.Debug("starting worker", "worker", name)
	for {
		desc, err := e.queue.Dequeue(ctx)
		if err != nil {
			e.logger.Debug("stopping worker", "worker", name, "reason", err)
			return
		}

		// In-flight work is not cancelled by shutdown.
		e.process(context.WithoutCancel(ctx), desc, name)
	}
}

// process runs one task from dispatch to terminal status. It never panics.
func (e *Engine) process(ctx context.Context, desc *domain.TaskDescriptor, worker string) {
	e.metrics.SetBusyWorkers(int(e.active.Add(1)))
	defer func() {
		e.metrics.SetBusyWorkers(int(e.active.Add(-1)))
	}()

	log := e.logger.With(
		"task_id", desc.ID,
		"kind", desc.Kind,
		"worker", worker,
	)
	started := e.now()
	att := newAttempt(desc, e.propagator, e.now, log)

	gen, err := e.dispatcher.For(desc.Kind)
	if err != nil {
		log.Warn("no generator for task kind", "error", err)
		att.fail(ctx, err)
		e.metrics.TaskFinished(desc.Kind, att.status, e.now().Sub(started))
		return
	}

	log.Info("processing task")
	att.start(ctx)

	req := generation.Request{
		TaskID:     desc.ID,
		Kind:       desc.Kind,
		Prompt:     desc.Prompt,
		Parameters: desc.Parameters,
	}
	res, err := runGenerator(ctx, gen, req, func(p int) { att.report(ctx, p) }, log)
	if err != nil {
		log.Error("task execution failed", "error", redact.Error(err))
		att.fail(ctx, err)
	} else {
		att.complete(ctx, res)
		if att.status == domain.StatusCompleted {
			log.Info("task completed successfully")
		}
	}

	e.metrics.TaskFinished(desc.Kind, att.status, e.now().Sub(started))
}

// runGenerator calls gen and converts a panic into an error.
func runGenerator(
	ctx context.Context,
	gen generation.Generator,
	req generation.Request,
	progress generation.ProgressFunc,
	log *slog.Logger,
) (res *generation.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from generator panic",
				"panic", r,
				"stack", string(debug.Stack()))
			res = nil
			err = fmt.Errorf("%w: generator panicked: %v", generation.ErrGenerationFailed, r)
		}
	}()
	return gen.Generate(ctx, req, progress)
}
