package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/metrics"
	"github.com/cheerforge/cheerforge/internal/redact"
	"github.com/cheerforge/cheerforge/internal/store"
)

// Default propagation settings
const (
	DefaultStatusTTL    = time.Hour
	DefaultWriteTimeout = 5 * time.Second
)

// StatusPropagator writes every status change to the record store and then
// mirrors the full snapshot to the status cache. Both writes are best effort:
// failures are logged and counted, never returned, so a broken backend cannot
// stall a worker.
type StatusPropagator struct {
	store        store.TaskRecordStore
	cache        store.StatusCache
	ttl          time.Duration
	writeTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewStatusPropagator creates a propagator. cache may be nil, in which case
// only the store is written. Non-positive ttl and writeTimeout fall back to
// the defaults.
func NewStatusPropagator(
	recordStore store.TaskRecordStore,
	cache store.StatusCache,
	ttl time.Duration,
	writeTimeout time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *StatusPropagator {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &StatusPropagator{
		store:        recordStore,
		cache:        cache,
		ttl:          ttl,
		writeTimeout: writeTimeout,
		metrics:      m,
		logger:       logger,
	}
}

// Propagate writes rec to the store, then to the cache. The cache write is
// attempted even if the store write failed.
func (p *StatusPropagator) Propagate(ctx context.Context, rec *domain.StatusRecord) {
	log := p.logger.With(
		"task_id", rec.TaskID,
		"status", rec.Status,
		"progress", rec.Progress)

	if err := p.writeStore(ctx, rec); err != nil {
		p.metrics.StatusWriteFailed(metrics.TargetStore)
		log.Error("failed to write task status to store", "error", redact.Error(err))
	}

	if p.cache == nil {
		return
	}
	if err := p.writeCache(ctx, rec); err != nil {
		p.metrics.StatusWriteFailed(metrics.TargetCache)
		log.Warn("failed to write task status to cache", "error", redact.Error(err))
	}

	log.Debug("task status propagated")
}

func (p *StatusPropagator) writeStore(ctx context.Context, rec *domain.StatusRecord) error {
	wctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	return p.store.UpsertStatus(wctx, rec.Clone())
}

func (p *StatusPropagator) writeCache(ctx context.Context, rec *domain.StatusRecord) error {
	wctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	return p.cache.Put(wctx, rec.Clone(), p.ttl)
}
