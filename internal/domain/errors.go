package domain

import "errors"

var (
	// ErrInvalidLevel is returned when the question bank has nothing for the requested level.
	ErrInvalidLevel = errors.New("no questions for level")
	// ErrInvalidConfig indicates malformed timing or pass threshold.
	ErrInvalidConfig = errors.New("invalid assessment config")
	// ErrUnknownQuestion indicates an answer for a question outside the session.
	ErrUnknownQuestion = errors.New("question not in session")
	// ErrInvalidOption indicates an option index outside the question's options.
	ErrInvalidOption = errors.New("option index out of range")
	// ErrSessionClosed is returned when a session is mutated after submission or expiry.
	ErrSessionClosed = errors.New("assessment session closed")
	// ErrSessionNotFound is returned for unknown or evicted session ids.
	ErrSessionNotFound = errors.New("assessment session not found")
	// ErrResultNotReady is returned when a result is requested for an active session.
	ErrResultNotReady = errors.New("assessment result not ready")
	// ErrInvalidQuestion indicates a stored question whose correct index does not fit its options.
	ErrInvalidQuestion = errors.New("invalid question record")
	// ErrInvalidUpload indicates a question upload that cannot be parsed.
	ErrInvalidUpload = errors.New("invalid question upload")
)
