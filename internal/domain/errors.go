package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidKind is returned when a generation kind is not one of the supported kinds.
	ErrInvalidKind = errors.New("invalid generation kind")

	// ErrInvalidStatus is returned when a task status is not a known status value.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidTransition is returned when a status change would move a task backwards.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrProgressOutOfRange is returned when progress falls outside [0,100].
	ErrProgressOutOfRange = errors.New("progress out of range")

	// ErrEmptyTaskID is returned when a task identifier is empty.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")
)
