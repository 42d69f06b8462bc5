package task

import "errors"

// Common errors returned by the task package
var (
	// ErrQueueClosed is returned when enqueueing to or dequeueing from a closed queue.
	ErrQueueClosed = errors.New("task queue is closed")

	// ErrEngineNotReady is returned when a task is submitted before the engine
	// has been initialized or after it has been shut down.
	ErrEngineNotReady = errors.New("task engine is not ready")

	// ErrEngineStarted is returned when Initialize is called more than once.
	ErrEngineStarted = errors.New("task engine already initialized")

	// ErrEngineShuttingDown is recorded as the failure of tasks that were
	// still waiting in the queue when the engine shut down.
	ErrEngineShuttingDown = errors.New("task engine shut down before the task was processed")
)
