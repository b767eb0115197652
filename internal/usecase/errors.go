package usecase

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidState      = errors.New("invalid match state")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotFound          = errors.New("resource not found")
	// ErrConflictLost marks a transient race: the caller may retry with fresh state.
	ErrConflictLost          = errors.New("conflict lost")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
