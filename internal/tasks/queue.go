package tasks

import (
	"errors"
	"sync"
)

// Task is one unit of deferred work. Label is used for status reporting
// and event payloads; Run does the work on the worker goroutine.
type Task struct {
	Label string
	Run   func() error
}

// ErrQueueClosed is returned when enqueueing after Close.
var ErrQueueClosed = errors.New("tasks: queue closed")

// DefaultQueueCapacity bounds how much work can pile up before callers
// are told to back off.
const DefaultQueueCapacity = 32

// Queue is a bounded FIFO of tasks feeding a single worker. Close shuts
// the queue down; tasks already accepted still run, then Dequeue reports
// the nil shutdown sentinel. The mutex covers every send so no task can
// slip in behind the shutdown and silently never run.
type Queue struct {
	mu     sync.Mutex
	ch     chan *Task
	closed bool
}

// NewQueue creates a queue with the given capacity. Non-positive capacity
// falls back to DefaultQueueCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		ch: make(chan *Task, capacity),
	}
}

// TryEnqueue offers a task without blocking. It reports false when the
// queue is full or closed, so a hot caller can drop work instead of
// stalling the capture loop.
func (q *Queue) TryEnqueue(t *Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	select {
	case q.ch <- t:
		return true
	default:
		return false
	}
}

// Enqueue blocks until the task is accepted or the queue is closed.
// While it waits on a full queue, Close waits behind it.
func (q *Queue) Enqueue(t *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.ch <- t
	return nil
}

// Dequeue blocks until a task is available. A nil result is the shutdown
// sentinel.
func (q *Queue) Dequeue() *Task {
	t, ok := <-q.ch
	if !ok {
		return nil
	}
	return t
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int { return len(q.ch) }

// Close rejects further work and closes the channel, so Dequeue drains
// the accepted tasks and then reports the sentinel. Never blocks, even
// on a full queue with no worker running.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
