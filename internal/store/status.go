package store

import (
	"context"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
)

// TaskRecordStore defines the interface for the durable, authoritative task
// status records.
// Version: 1.0
type TaskRecordStore interface {
	// UpsertStatus writes rec keyed by its task ID. Implementations apply it
	// as a partial update: status and progress always, while result, output
	// reference, error, completion time and generation time are only written
	// for terminal statuses. A queued record resets any previous attempt
	// stored under the same ID.
	UpsertStatus(ctx context.Context, rec *domain.StatusRecord) error

	// GetStatus retrieves the record for taskID.
	// Returns ErrTaskRecordNotFound if no record exists.
	GetStatus(ctx context.Context, taskID string) (*domain.StatusRecord, error)
}

// StatusCache defines the interface for the best-effort status snapshot cache.
// It is never the source of truth.
// Version: 1.0
type StatusCache interface {
	// Put stores a full snapshot of rec that expires after ttl.
	Put(ctx context.Context, rec *domain.StatusRecord, ttl time.Duration) error

	// Get retrieves the snapshot for taskID.
	// Returns ErrCacheMiss if the snapshot is absent or expired.
	Get(ctx context.Context, taskID string) (*domain.StatusRecord, error)
}

// Pinger is implemented by backends that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
