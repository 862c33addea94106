package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue buffers tasks between submitters (HTTP handlers, the reminder
// scheduler, recovery) and the runner's workers. Enqueue never blocks a
// request; a full buffer is reported so the task stays pending in the store
// and is picked up by the next recovery.
type TaskQueue struct {
	mu     sync.RWMutex
	ch     chan Task
	closed bool
	logger *slog.Logger
}

// NewTaskQueue returns a queue holding at most size tasks (minimum one).
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{ch: make(chan Task, max(size, 1)), logger: logger}
}

func (q *TaskQueue) Enqueue(t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- t:
	default:
		return fmt.Errorf("%w: %d tasks waiting", ErrQueueFull, cap(q.ch))
	}
	q.logger.Debug("queued task", "task_id", t.ID(), "task_type", t.Type(), "waiting", len(q.ch))
	return nil
}

// Close stops accepting tasks. Workers drain what is already buffered.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

func (q *TaskQueue) GetChannel() <-chan Task { return q.ch }

func (q *TaskQueue) Len() int { return len(q.ch) }
