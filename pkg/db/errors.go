package db

import "errors"

var (
	// ErrNotInitialized is returned by data operations on a Store whose
	// Initialize has not completed.
	ErrNotInitialized = errors.New("store not initialized")
	// ErrInvalidArgument marks input rejected before any store mutation.
	ErrInvalidArgument = errors.New("invalid argument")
)
