package service

import "errors"

var (
	// ErrActivityNotFound is returned when an operation names an activity the
	// tracker does not know. Nothing is written.
	ErrActivityNotFound = errors.New("activity not found")

	// ErrSaveFailed is wrapped together with the store error whenever a write
	// fails. By the time it is returned the tracker has reloaded its state.
	ErrSaveFailed = errors.New("saving failed, state resynchronized")
)
