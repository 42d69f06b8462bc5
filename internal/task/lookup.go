package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/redact"
	"github.com/cheerforge/cheerforge/internal/store"
)

// StatusLookup answers status polls. It reads the cache first and falls back
// to the authoritative store; a snapshot found only in the store is not
// written back to the cache.
type StatusLookup struct {
	store  store.TaskRecordStore
	cache  store.StatusCache
	logger *slog.Logger
}

// NewStatusLookup creates a lookup. cache may be nil.
func NewStatusLookup(recordStore store.TaskRecordStore, cache store.StatusCache, logger *slog.Logger) *StatusLookup {
	return &StatusLookup{
		store:  recordStore,
		cache:  cache,
		logger: logger,
	}
}

// Lookup returns the latest known status of taskID.
// Returns store.ErrTaskRecordNotFound if neither the cache nor the store knows the task.
func (l *StatusLookup) Lookup(ctx context.Context, taskID string) (*domain.StatusRecord, error) {
	if l.cache != nil {
		rec, err := l.cache.Get(ctx, taskID)
		switch {
		case err == nil:
			return rec, nil
		case errors.Is(err, store.ErrCacheMiss):
		default:
			l.logger.WarnContext(ctx, "status cache read failed, falling back to store",
				"task_id", taskID,
				"error", redact.Error(err))
		}
	}

	rec, err := l.store.GetStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up task %s: %w", taskID, err)
	}
	return rec, nil
}
