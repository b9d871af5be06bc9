package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific variants wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrConcurrentUpdate is returned when a store gave up on a mutation
	// because the document kept changing underneath it.
	ErrConcurrentUpdate = errors.New("concurrent update")

	// ErrCorruptBoard is returned when a stored board document breaks the
	// board invariants, such as duplicate card IDs or a card ID at or above
	// the card sequence. It is a backend fault, never a client error.
	ErrCorruptBoard = errors.New("corrupt board document")

	// ErrBoardNotFound indicates that the requested board does not exist.
	ErrBoardNotFound = fmt.Errorf("%w: board", ErrNotFound)

	// ErrCardNotFound indicates that the board exists but has no card with
	// the requested ID.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// ErrDuplicateBoardID indicates that a board with the given ID already exists.
	ErrDuplicateBoardID = fmt.Errorf("%w: board id", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for backend failures with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "board")
	Operation string // The operation that failed (e.g., "add_card")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
