package domain

import "errors"

// ErrNotFound is returned when no record matches (id, owner). A record
// owned by someone else is reported the same way.
var ErrNotFound = errors.New("not found")

// ErrUpstreamUnavailable wraps failures of external dependencies
// (database, cache, remote pages).
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ValidationError reports user-correctable input problems.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
