// Package queue provides the recompute task queue.
package queue

import (
	"context"
	"sync"

	"github.com/chimera-hq/guardian/pkg/metrics"
)

// Task orders one competency recomputation for a (person, skill) pair.
type Task struct {
	PersonID string `json:"person_id"`
	Skill    string `json:"skill"`
}

// Queue is the transport between recompute acceptance and the worker pool.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Dequeue(ctx context.Context) (Task, error)
	Size() int
	Capacity() int
	Close()
}

// InMemoryQueue is a bounded channel-backed queue. Enqueue never blocks;
// a full queue rejects immediately so callers can shed load.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with the given capacity.
func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity < 1 {
		capacity = 1
	}
	metrics.UpdateQueueCapacity(capacity)
	return &InMemoryQueue{
		tasks:    make(chan Task, capacity),
		capacity: capacity,
	}
}

// Enqueue adds a task, rejecting when the queue is full or closed.
func (q *InMemoryQueue) Enqueue(ctx context.Context, task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.RecordQueueEnqueueError()
		return ErrQueueClosed
	}

	select {
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return ctx.Err()
	case q.tasks <- task:
		metrics.RecordQueueEnqueue()
		q.publishGauges()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		return ErrQueueFull
	}
}

// Dequeue blocks until a task arrives, the context expires, or the queue
// closes with no tasks left.
func (q *InMemoryQueue) Dequeue(ctx context.Context) (Task, error) {
	select {
	case <-ctx.Done():
		return Task{}, ctx.Err()
	case task, ok := <-q.tasks:
		if !ok {
			return Task{}, ErrQueueClosed
		}
		metrics.RecordQueueDequeue()
		q.publishGauges()
		return task, nil
	}
}

// Size reports the number of queued tasks.
func (q *InMemoryQueue) Size() int {
	return len(q.tasks)
}

// Capacity reports the queue's bound.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close stops accepting tasks. Already-queued tasks drain normally.
func (q *InMemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
}

func (q *InMemoryQueue) publishGauges() {
	size := len(q.tasks)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
