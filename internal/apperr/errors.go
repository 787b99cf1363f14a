// Package apperr defines the sentinel errors shared across Marque.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a lookup by id, hash or URL matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned by mutating store operations invoked
	// without owner rights. It is never silently downgraded.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidFormat is returned for malformed filter input, such as a
	// bad day string.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrPersistence wraps I/O failures while loading or saving the datastore.
	ErrPersistence = errors.New("persistence error")
)
