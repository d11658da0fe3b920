// Package sentinel holds the storage facts that stores return and services
// translate into domain errors. Input validation never uses them.
package sentinel

import "errors"

var (
	// ErrNotFound: the row or object is missing or soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a unique index refused the write, such as a second active
	// case or a reused id.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState: a check constraint refused the row, such as negative
	// stock or an approved quantity above the requested one.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable: the backend is throttling or down and the call may
	// succeed later.
	ErrUnavailable = errors.New("unavailable")
)
