package service

import "errors"

var (
	// ErrNotFound signals a bad interview id.
	ErrNotFound = errors.New("interview not found")

	// ErrCandidateNotFound signals an unknown candidate email.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrInvalidSessionCode signals a code that resolves to no
	// not-yet-matched session.
	ErrInvalidSessionCode = errors.New("invalid session code")

	// ErrAlreadyConnected signals a connect attempt against a session
	// that already left the matching phase.
	ErrAlreadyConnected = errors.New("session already connected or completed")

	// ErrInvalidTransition signals a guard violation on the session
	// state machine.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInterviewCompleted signals a mutation against a terminal session.
	ErrInterviewCompleted = errors.New("interview already completed")
)
