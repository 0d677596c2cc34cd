package profile

import "errors"

// Sentinel kinds for profile errors.
var (
	ErrUnknownProfile = errors.New("unknown mission profile")
	ErrInvalidProfile = errors.New("invalid mission profile")
)
