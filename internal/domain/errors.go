package domain

import "errors"

// Error kinds shared across layers. The store adapter returns these instead
// of driver errors; handlers map them to HTTP statuses with errors.Is.
var (
	// ErrNotFound: a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID: an identifier string does not parse as a store id.
	ErrInvalidID = errors.New("invalid id")
	// ErrTimerStopped: stop was called on an already-stopped entry.
	ErrTimerStopped = errors.New("timer already stopped")
	// ErrValidation: a request field failed shape or range checks.
	ErrValidation = errors.New("validation failed")
)
