package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/generation"
	"github.com/cheerforge/cheerforge/internal/redact"
)

// Progress values written by the lifecycle itself
const (
	ProgressStarted  = 10
	ProgressComplete = 100

	// maxIntermediateProgress caps milestones so that 100 is only ever
	// written together with the completed status.
	maxIntermediateProgress = ProgressComplete - 1
)

// attempt drives the status of one processing attempt of one task. It
// enforces that status only moves forward, that progress strictly increases
// while processing, and that exactly one terminal status is written.
// An attempt is owned by a single worker and is not safe for concurrent use.
type attempt struct {
	desc       *domain.TaskDescriptor
	status     domain.Status
	progress   int
	propagator *StatusPropagator
	now        func() time.Time
	logger     *slog.Logger
}

func newAttempt(
	desc *domain.TaskDescriptor,
	propagator *StatusPropagator,
	now func() time.Time,
	logger *slog.Logger,
) *attempt {
	return &attempt{
		desc:       desc,
		status:     domain.StatusQueued,
		propagator: propagator,
		now:        now,
		logger:     logger,
	}
}

// queuedRecord is the record written on submission, before any worker has
// seen the task.
func queuedRecord(desc *domain.TaskDescriptor) *domain.StatusRecord {
	return &domain.StatusRecord{
		TaskID:    desc.ID,
		Kind:      desc.Kind,
		Status:    domain.StatusQueued,
		Progress:  0,
		CreatedAt: desc.CreatedAt,
		UpdatedAt: desc.CreatedAt,
	}
}

// start moves the task to processing at ProgressStarted.
func (a *attempt) start(ctx context.Context) {
	a.advance(ctx, domain.StatusProcessing, ProgressStarted)
}

// report records an intermediate milestone. Values that do not increase
// progress are ignored; values at or above 100 are held at 99.
func (a *attempt) report(ctx context.Context, progress int) {
	if a.status != domain.StatusProcessing {
		a.logger.Debug("ignoring progress outside processing", "status", a.status, "progress", progress)
		return
	}
	if progress > maxIntermediateProgress {
		progress = maxIntermediateProgress
	}
	if progress <= a.progress {
		a.logger.Debug("ignoring non-increasing progress", "current", a.progress, "reported", progress)
		return
	}
	a.advance(ctx, domain.StatusProcessing, progress)
}

// complete writes the completed status with the result payload.
func (a *attempt) complete(ctx context.Context, res *generation.Result) {
	if res == nil {
		a.fail(ctx, fmt.Errorf("%w: generator returned no result", generation.ErrGenerationFailed))
		return
	}

	payload, err := json.Marshal(res.Payload)
	if err != nil {
		a.fail(ctx, fmt.Errorf("%w: failed to encode result: %v", generation.ErrGenerationFailed, err))
		return
	}

	rec := a.record(domain.StatusCompleted, ProgressComplete)
	rec.Result = payload
	rec.OutputRef = res.OutputRef
	a.finish(ctx, rec)
}

// fail writes the failed status with progress reset to 0.
func (a *attempt) fail(ctx context.Context, cause error) {
	rec := a.record(domain.StatusFailed, 0)
	rec.Error = redact.Error(cause)
	a.finish(ctx, rec)
}

func (a *attempt) finish(ctx context.Context, rec *domain.StatusRecord) {
	if !a.status.CanTransitionTo(rec.Status) {
		a.logger.Error("refusing terminal status write",
			"from", a.status,
			"to", rec.Status)
		return
	}

	completedAt := *rec.CompletedAt
	elapsed := completedAt.Sub(a.desc.CreatedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	rec.GenerationTime = &elapsed

	a.status = rec.Status
	a.progress = rec.Progress
	a.propagator.Propagate(ctx, rec)
}

func (a *attempt) advance(ctx context.Context, status domain.Status, progress int) {
	if !a.status.CanTransitionTo(status) {
		a.logger.Error("refusing status write",
			"from", a.status,
			"to", status)
		return
	}
	a.status = status
	a.progress = progress
	a.propagator.Propagate(ctx, a.record(status, progress))
}

func (a *attempt) record(status domain.Status, progress int) *domain.StatusRecord {
	now := a.now().UTC()
	rec := &domain.StatusRecord{
		TaskID:    a.desc.ID,
		Kind:      a.desc.Kind,
		Status:    status,
		Progress:  progress,
		CreatedAt: a.desc.CreatedAt,
		UpdatedAt: now,
	}
	if status.IsTerminal() {
		rec.CompletedAt = &now
	}
	return rec
}
