package services

import "errors"

// Engine failures the caller is expected to branch on. Everything else that
// bubbles out of a service is a storage failure and maps to a generic 500.
var (
	ErrUnauthorized = errors.New("caller is not enrolled")
	ErrNotFound     = errors.New("record not found")
	ErrIneligible   = errors.New("completion criteria not met")
)

// ValidationError reports a malformed or out-of-range input. It is returned
// before anything is persisted, so a validation failure never leaves a
// partial write behind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
