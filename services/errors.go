package services

import (
	"errors"
	"fmt"

	"github.com/blogem/contacts/models"
	"github.com/blogem/contacts/repositories"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an identifier does not resolve to a record.
	ErrNotFound = repositories.ErrNotFound

	// ErrStoreUnavailable wraps any other failure of the underlying store.
	// It is propagated to the caller and never retried.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError lists the field problems of a rejected request.
type ValidationError struct {
	Errors models.ValidationErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Errors)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(errs models.ValidationErrors) error {
	return &ValidationError{Errors: errs}
}

func invalidField(field, message string) error {
	return newValidationError(models.ValidationErrors{{Field: field, Message: message}})
}

// classify wraps err as ErrStoreUnavailable unless it already carries one of
// the service sentinels.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
