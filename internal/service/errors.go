package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
	ErrPersistence       = errors.New("persistence failure")
)

// ValidationError carries every violation found so callers can show all
// problems at once instead of fixing them one at a time.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// wrapPersistence converts an unexpected storage error into the opaque
// persistence failure kind, leaving domain errors untouched.
func wrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrValidation):
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
