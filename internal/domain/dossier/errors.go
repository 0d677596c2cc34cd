package dossier

import "errors"

// Sentinel kinds for builder errors.
var (
	// ErrInconsistent means the proposal references roster state that does
	// not exist; the dossier would misrepresent it.
	ErrInconsistent = errors.New("inconsistent proposal")
)
