package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
var (
	// ErrNilRunner indicates the service was built without a job runner
	ErrNilRunner = errors.New("job runner cannot be nil")

	// ErrNilLogger indicates the service was built without a logger
	ErrNilLogger = errors.New("logger cannot be nil")
)

// CompletionServiceError wraps errors from the completion service with context.
type CompletionServiceError struct {
	// Operation is the operation that failed (e.g., "new_completion_service")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for CompletionServiceError.
func (e *CompletionServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("completion service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CompletionServiceError) Unwrap() error {
	return e.Err
}

// NewCompletionServiceError creates a new CompletionServiceError.
func NewCompletionServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &CompletionServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
