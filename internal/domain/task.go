package domain

import (
	"fmt"
	"maps"
	"time"
)

// TaskDescriptor is the immutable unit of work placed on the task queue.
// Callers must not mutate Parameters after the descriptor has been queued.
type TaskDescriptor struct {
	ID         string         `json:"task_id"`
	Kind       Kind           `json:"type"`
	Prompt     string         `json:"prompt"`
	Parameters map[string]any `json:"parameters"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewTaskDescriptor builds a descriptor stamped with createdAt. The parameter
// map is copied so that later changes by the caller cannot leak into a queued
// task. Only the identifier is validated; kind membership is checked at
// dispatch so that unsupported kinds end as failed tasks.
func NewTaskDescriptor(
	id string,
	kind Kind,
	prompt string,
	params map[string]any,
	createdAt time.Time,
) (*TaskDescriptor, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTaskID)
	}

	cloned := make(map[string]any, len(params))
	maps.Copy(cloned, params)

	return &TaskDescriptor{
		ID:         id,
		Kind:       kind,
		Prompt:     prompt,
		Parameters: cloned,
		CreatedAt:  createdAt.UTC(),
	}, nil
}
