package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/leancoffee-api/internal/domain"
	"github.com/phrazzld/leancoffee-api/internal/store"
)

// Error handling principles:
// 1. Expected conditions are reported with the sentinel errors of the store
//    and domain packages (store.ErrBoardNotFound, store.ErrCardNotFound,
//    store.ErrDuplicateBoardID, domain.ErrValidation).
// 2. Unexpected failures are wrapped in BoardServiceError.
// 3. Callers use errors.Is/errors.As; the API layer maps to HTTP status codes.

// BoardServiceError is a custom error type for board service errors.
type BoardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for BoardServiceError.
func (e *BoardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("board service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("board service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *BoardServiceError) Unwrap() error {
	return e.Err
}

// NewBoardServiceError creates a new BoardServiceError.
func NewBoardServiceError(operation, message string, err error) *BoardServiceError {
	return &BoardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// isExpected reports whether err is one of the conditions callers are meant
// to handle themselves.
func isExpected(err error) bool {
	return errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrDuplicate) ||
		errors.Is(err, domain.ErrValidation)
}

// wrapError passes expected conditions through untouched and wraps anything
// else in a BoardServiceError.
func wrapError(operation, message string, err error) error {
	if err == nil || isExpected(err) {
		return err
	}
	return NewBoardServiceError(operation, message, err)
}
