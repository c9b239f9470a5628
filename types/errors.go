package types

import (
	"errors"
	"fmt"
)

var ErrTemplateNotFound = errors.New("template not found")

// ValidationError is a problem with user input. The operation that returns it
// leaves all state unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field string, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func (validationError *ValidationError) Error() string {
	return validationError.Message
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}
