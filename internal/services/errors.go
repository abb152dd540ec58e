package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("queue entry not found")
	ErrConflict = errors.New("queue entry already resolved")
)

// ValidationError reports malformed or missing caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
