package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusRecord is the projection of a task's lifecycle that is written to the
// task record store and mirrored to the status cache. The field set is
// identical in both places so that a cache miss can fall back to the store
// without callers noticing.
type StatusRecord struct {
	TaskID   string `json:"task_id"`
	Kind     Kind   `json:"type,omitempty"`
	Status   Status `json:"status"`
	Progress int    `json:"progress"`

	// OutputRef points at a generated artifact (for example an image path).
	OutputRef string `json:"output_ref,omitempty"`

	// Result is the kind-specific payload, present only once completed.
	Result json.RawMessage `json:"result,omitempty"`

	// Error describes why the task failed, present only once failed.
	Error string `json:"error,omitempty"`

	// GenerationTime is the elapsed time from task creation to completion.
	GenerationTime *time.Duration `json:"generation_time,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Validate checks the record's invariants that do not depend on history.
func (r *StatusRecord) Validate() error {
	if r.TaskID == "" {
		return ErrEmptyTaskID
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	if r.Progress < 0 || r.Progress > 100 {
		return fmt.Errorf("%w: %d", ErrProgressOutOfRange, r.Progress)
	}
	return nil
}

// Clone returns a deep copy of r so that snapshots handed to the cache or
// store cannot be mutated by the worker that produced them.
func (r *StatusRecord) Clone() *StatusRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Result != nil {
		c.Result = append(json.RawMessage(nil), r.Result...)
	}
	if r.GenerationTime != nil {
		d := *r.GenerationTime
		c.GenerationTime = &d
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
