package workflow

import "errors"

var (
	// ErrInvalidInput rejects malformed transition arguments
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTransition rejects stage skips and illegal backward moves
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrPendingReview signals unresolved assignments; the caller may
	// resolve them or force through with explicit acknowledgment
	ErrPendingReview = errors.New("pending review")
	// ErrValidationBlocked rejects proceeding past a blocked gate
	// without an override
	ErrValidationBlocked = errors.New("validation blocked")
	// ErrConcurrentModification is returned when a competing request won
	// the race for the same job
	ErrConcurrentModification = errors.New("concurrent modification")
)
