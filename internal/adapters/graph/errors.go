package graph

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrNotFound means the requested node does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable means the backend could not be reached; the operation
	// may succeed on retry.
	ErrUnavailable = errors.New("graph unavailable")
)
