package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrQueueFull means the queue is at capacity; the caller should shed
	// or defer the task.
	ErrQueueFull = errors.New("queue full")

	// ErrQueueClosed means the queue no longer accepts or holds tasks.
	ErrQueueClosed = errors.New("queue closed")
)
