package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cheerforge/cheerforge/internal/domain"
)

// TaskQueue is an unbounded FIFO of task descriptors shared by all workers.
// Enqueue never blocks and never rejects while the queue is open; Dequeue
// suspends until an item is available. Each item is delivered to exactly one
// caller of Dequeue.
type TaskQueue struct {
	mu     sync.Mutex
	items  []*domain.TaskDescriptor
	ready  chan struct{} // closed and replaced whenever items are added
	closed bool
	logger *slog.Logger

	onDepth func(int) // called with the new length while mu is held
}

// NewTaskQueue creates an empty, open queue.
func NewTaskQueue(logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		ready:  make(chan struct{}),
		logger: logger,
	}
}

// OnDepthChange registers fn to receive the queue length after every
// Enqueue, Dequeue and Close. fn runs with the queue locked, so successive
// calls are ordered and reflect the true length; it must not call back into
// the queue.
func (q *TaskQueue) OnDepthChange(fn func(int)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onDepth = fn
}

func (q *TaskQueue) publishDepth() {
	if q.onDepth != nil {
		q.onDepth(len(q.items))
	}
}

// Enqueue appends desc to the queue. It returns ErrQueueClosed once Close has
// been called.
func (q *TaskQueue) Enqueue(desc *domain.TaskDescriptor) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items = append(q.items, desc)
	n := len(q.items)
	q.publishDepth()
	close(q.ready)
	q.ready = make(chan struct{})
	q.mu.Unlock()

	q.logger.Debug("task enqueued",
		"task_id", desc.ID,
		"kind", desc.Kind,
		"queue_len", n)
	return nil
}

// Dequeue removes and returns the oldest descriptor, waiting if the queue is
// empty. It returns ctx.Err() if ctx is done first, and ErrQueueClosed once
// the queue has been closed.
func (q *TaskQueue) Dequeue(ctx context.Context) (*domain.TaskDescriptor, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return nil, ErrQueueClosed
		}
		if len(q.items) > 0 {
			desc := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.publishDepth()
			q.mu.Unlock()
			return desc, nil
		}
		ready := q.ready
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ready:
		}
	}
}

// Len returns the number of descriptors waiting in the queue.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue. Waiting descriptors are discarded and returned so the
// caller can report them; blocked Dequeue calls return ErrQueueClosed.
// Calling Close more than once is a no-op.
func (q *TaskQueue) Close() []*domain.TaskDescriptor {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	dropped := q.items
	q.items = nil
	q.publishDepth()
	close(q.ready)

	q.logger.Info("task queue closed", "dropped", len(dropped))
	return dropped
}
