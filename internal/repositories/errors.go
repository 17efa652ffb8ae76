package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an insert or update would break email uniqueness.
	ErrDuplicateEmail = errors.New("email already in use")
)
