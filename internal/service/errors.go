package service

import (
	"errors"
	"fmt"

	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrPersistence marks an unexpected storage failure. The transaction has
	// been rolled back. API layer should map this to HTTP 500.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidReorder indicates an empty reorder list or one with duplicate
	// ids. It is always wrapped in a domain.ValidationError (HTTP 400).
	ErrInvalidReorder = errors.New("reorder list must be non-empty and free of duplicates")

	// ErrReorderSetMismatch indicates the reorder list is not exactly the set
	// of todos the owner currently has: an id is missing, extra, or belongs
	// to someone else. API layer should map this to HTTP 403.
	ErrReorderSetMismatch = errors.New("reorder ids do not match the owner's todos")
)

// TodoServiceError is a custom error type for todo service errors.
type TodoServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TodoServiceError.
func (e *TodoServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("todo service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("todo service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TodoServiceError) Unwrap() error {
	return e.Err
}

// NewTodoServiceError creates a new TodoServiceError.
func NewTodoServiceError(operation, message string, err error) *TodoServiceError {
	return &TodoServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// classify passes caller-facing errors through unchanged and turns
// everything else into a persistence failure for operation.
func classify(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrTodoNotFound),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, ErrReorderSetMismatch):
		return err
	default:
		return NewTodoServiceError(operation, "persistence failure", fmt.Errorf("%w: %w", ErrPersistence, err))
	}
}
