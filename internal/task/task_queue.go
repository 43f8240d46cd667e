package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrQueueClosed is returned when enqueueing after Close.
	ErrQueueClosed = errors.New("task queue is closed")

	// ErrQueueFull is returned when the buffer is exhausted. Callers
	// surface this to the client; the saved task is picked up again by
	// recovery on the next start.
	ErrQueueFull = errors.New("task queue is full")
)

// TaskQueue is a bounded in-memory queue feeding the worker pool. It
// satisfies TaskQueueReader for consumers and TaskQueueWriter for
// producers.
type TaskQueue struct {
	mu     sync.Mutex
	tasks  chan Task
	logger *slog.Logger
	closed bool
}

func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		tasks:  make(chan Task, size),
		logger: logger,
	}
}

// Enqueue adds a task without blocking. A full buffer is an error, not
// a wait: design generation is best-effort and the caller should not
// stall an HTTP request on it.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"queue_len", len(q.tasks))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Close rejects further submissions and closes the channel so workers
// drain what is left and exit. Safe to call more than once.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
	q.logger.Info("task queue closed")
}

// GetChannel exposes the consumer side of the queue.
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.tasks
}
