package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/lazyreader/internal/api/shared"
	"github.com/phrazzld/lazyreader/internal/generation"
	"github.com/phrazzld/lazyreader/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var maxBytesErr *http.MaxBytesError

	switch {
	// Not found errors
	case errors.Is(err, task.ErrJobNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, generation.ErrInvalidSchema),
		errors.Is(err, generation.ErrInvalidConfig),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, task.ErrJobNotFound):
		return "Job not found"

	case errors.Is(err, generation.ErrInvalidSchema):
		return "Invalid schema"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.As(err, &maxBytesErr):
		return "Request body too large"

	default:
		return "An unexpected error occurred"
	}
}

// decodeErrorResponse picks the status and message for a request body that
// could not be decoded. Syntax and type errors are the client's fault.
func decodeErrorResponse(err error) (int, string) {
	switch status := MapErrorToStatusCode(err); status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return status, GetSafeErrorMessage(err)
	default:
		return http.StatusBadRequest, "Invalid request format"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message naming the first offending field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fieldErr := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fieldPath(fieldErr.Namespace()), getValidationTagMessage(fieldErr.Tag()))
}

// fieldPath strips the top-level struct name from a validator namespace,
// e.g. "SubmitJobRequest.Messages[0].Role" becomes "Messages[0].Role"
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
