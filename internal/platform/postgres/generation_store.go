package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/platform/logger"
	"github.com/cheerforge/cheerforge/internal/store"
)

const entityTaskRecord = "task_record"

// insertRecord is shared by the three upsert statements; they differ only in
// which columns a conflicting row has overwritten.
const insertRecord = `
	INSERT INTO generation_records (
		task_id, kind, status, progress, output_ref, result, error_message,
		generation_time_ms, created_at, updated_at, completed_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (task_id) DO UPDATE SET `

// upsertQueued resets any previous attempt stored under the same ID.
const upsertQueued = insertRecord + `
		kind = EXCLUDED.kind,
		status = EXCLUDED.status,
		progress = EXCLUDED.progress,
		output_ref = NULL,
		result = NULL,
		error_message = NULL,
		generation_time_ms = NULL,
		created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at,
		completed_at = NULL`

// upsertProgress touches only status and progress.
const upsertProgress = insertRecord + `
		status = EXCLUDED.status,
		progress = EXCLUDED.progress,
		updated_at = EXCLUDED.updated_at`

// upsertTerminal writes the outcome of a completed or failed attempt.
const upsertTerminal = insertRecord + `
		status = EXCLUDED.status,
		progress = EXCLUDED.progress,
		output_ref = EXCLUDED.output_ref,
		result = EXCLUDED.result,
		error_message = EXCLUDED.error_message,
		generation_time_ms = EXCLUDED.generation_time_ms,
		updated_at = EXCLUDED.updated_at,
		completed_at = EXCLUDED.completed_at`

const selectRecord = `
	SELECT task_id, kind, status, progress, output_ref, result, error_message,
		generation_time_ms, created_at, updated_at, completed_at
	FROM generation_records
	WHERE task_id = $1`

// GenerationStore implements store.TaskRecordStore using PostgreSQL.
type GenerationStore struct {
	db store.DBTX
}

var _ store.TaskRecordStore = (*GenerationStore)(nil)

// NewGenerationStore creates a new GenerationStore.
func NewGenerationStore(db store.DBTX) *GenerationStore {
	return &GenerationStore{db: db}
}

// UpsertStatus implements store.TaskRecordStore.
func (s *GenerationStore) UpsertStatus(ctx context.Context, rec *domain.StatusRecord) error {
	log := logger.FromContext(ctx)

	if rec == nil {
		return store.NewStoreError(entityTaskRecord, "upsert", "nil record", store.ErrInvalidEntity)
	}
	if err := rec.Validate(); err != nil {
		return store.NewStoreError(entityTaskRecord, "upsert", "invalid record",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	query := upsertProgress
	switch {
	case rec.Status == domain.StatusQueued:
		query = upsertQueued
	case rec.Status.IsTerminal():
		query = upsertTerminal
	}

	_, err := s.db.ExecContext(ctx, query, recordArgs(rec)...)
	if err != nil {
		log.Error("failed to upsert task record",
			"task_id", rec.TaskID,
			"status", rec.Status,
			"error", err)
		return store.NewStoreError(entityTaskRecord, "upsert", "failed to write status", MapError(err))
	}
	return nil
}

// GetStatus implements store.TaskRecordStore.
func (s *GenerationStore) GetStatus(ctx context.Context, taskID string) (*domain.StatusRecord, error) {
	var (
		rec          domain.StatusRecord
		kind         sql.NullString
		status       string
		outputRef    sql.NullString
		result       []byte
		errorMessage sql.NullString
		genMillis    sql.NullInt64
		completedAt  sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, selectRecord, taskID).Scan(
		&rec.TaskID,
		&kind,
		&status,
		&rec.Progress,
		&outputRef,
		&result,
		&errorMessage,
		&genMillis,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrTaskRecordNotFound, taskID)
		}
		return nil, store.NewStoreError(entityTaskRecord, "get", "failed to read status", MapError(err))
	}

	rec.Kind = domain.Kind(kind.String)
	rec.Status = domain.Status(status)
	rec.OutputRef = outputRef.String
	rec.Error = errorMessage.String
	if len(result) > 0 {
		rec.Result = result
	}
	if genMillis.Valid {
		d := time.Duration(genMillis.Int64) * time.Millisecond
		rec.GenerationTime = &d
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		rec.CompletedAt = &t
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()

	return &rec, nil
}

// Ping implements store.Pinger when the underlying handle supports it.
func (s *GenerationStore) Ping(ctx context.Context) error {
	p, ok := s.db.(interface{ PingContext(context.Context) error })
	if !ok {
		return nil
	}
	return p.PingContext(ctx)
}

func recordArgs(rec *domain.StatusRecord) []any {
	var result any
	if len(rec.Result) > 0 {
		result = []byte(rec.Result)
	}

	var genMillis sql.NullInt64
	if rec.GenerationTime != nil {
		genMillis = sql.NullInt64{Int64: rec.GenerationTime.Milliseconds(), Valid: true}
	}

	var completedAt sql.NullTime
	if rec.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *rec.CompletedAt, Valid: true}
	}

	return []any{
		rec.TaskID,
		nullString(string(rec.Kind)),
		string(rec.Status),
		rec.Progress,
		nullString(rec.OutputRef),
		result,
		nullString(rec.Error),
		genMillis,
		rec.CreatedAt,
		rec.UpdatedAt,
		completedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
