package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrForbidden     = errors.New("access forbidden: you don't own this resource")
	ErrValidation    = errors.New("validation failed")
	ErrSessionClosed = errors.New("session already completed")
)

// Entity specific not-found errors. All of them match ErrNotFound with errors.Is.
var (
	ErrInvalidID        = fmt.Errorf("invalid id: %w", ErrNotFound)
	ErrRoutineNotFound  = fmt.Errorf("routine %w", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("workout session %w", ErrNotFound)
	ErrExerciseNotFound = fmt.Errorf("exercise %w", ErrNotFound)
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
