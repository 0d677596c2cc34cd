package team

import "errors"

// Sentinel kinds for search errors.
var (
	// ErrInvalidRequest means the request cannot be searched as given.
	ErrInvalidRequest = errors.New("invalid search request")
)
