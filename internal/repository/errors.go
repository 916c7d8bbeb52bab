package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned when a guarded update lost the race
	// against a concurrent writer. Callers re-read and re-validate.
	ErrVersionConflict = errors.New("version conflict")

	// ErrCodeTaken is returned when a freshly generated session code
	// collided with a not-yet-matched session.
	ErrCodeTaken = errors.New("session code already in use")
)
