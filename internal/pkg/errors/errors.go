package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBusy is returned when an operation is already in progress.
	ErrBusy = errors.New("operation already in progress")
	// ErrUnavailable marks an optional dependency that is not configured or not reachable.
	ErrUnavailable = errors.New("unavailable")
)
