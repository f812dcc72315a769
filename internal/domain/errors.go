package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound = errors.New("not found")
	// ErrNoContent means a backend answered without a usable payload. For
	// speech and images it means "absent", not a failure.
	ErrNoContent = errors.New("backend returned no content")
	// ErrInvariant marks a programming error such as a step index out of
	// range while cooking.
	ErrInvariant    = errors.New("invariant violation")
	ErrInvalidScore = errors.New("grading score out of range")
	ErrClosed       = errors.New("session closed")
)
