package competency

import "errors"

// Sentinel kinds for estimator errors.
var (
	// ErrNoEvidence means the pair has no usable evidence; the record must
	// be absent rather than claimed at level zero.
	ErrNoEvidence = errors.New("no usable evidence")
)
