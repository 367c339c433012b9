package state

import "errors"

var (
	// ErrNotFound indicates no value is stored under the key.
	ErrNotFound = errors.New("state: not found")

	// ErrReadOnly indicates a write was attempted inside View.
	ErrReadOnly = errors.New("state: transaction is read-only")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("state: store is closed")

	// ErrEmptyKey indicates an empty bucket name or key.
	ErrEmptyKey = errors.New("state: empty bucket or key")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("state: required parameter is nil")
)
