package apperrors

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrStorage covers an unreadable, unwritable, or malformed behavior table.
	ErrStorage = errors.New("storage error")
	// ErrInvariant is returned when a probability write falls outside [1,99].
	ErrInvariant = errors.New("invariant violation")
)
