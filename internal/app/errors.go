package app

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrValidation means the request is malformed; retrying without
	// changes cannot succeed.
	ErrValidation = errors.New("invalid request")
)
