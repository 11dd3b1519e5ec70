package generation

import "errors"

// Common errors returned by the generation package and its backends
var (
	// ErrMissingAPIKey is returned when no credential is available for a backend
	ErrMissingAPIKey = errors.New("API key is missing")

	// ErrUnsupportedBackend is returned when no provider implementation exists for a backend
	ErrUnsupportedBackend = errors.New("unsupported LLM backend")

	// ErrUnknownBackend is returned when a backend name is not recognized at all
	ErrUnknownBackend = errors.New("unknown LLM backend")

	// ErrEmptyResponse is returned when the provider answered without any text
	ErrEmptyResponse = errors.New("Empty Response")

	// ErrInvalidSchema is returned when a structured output schema cannot be compiled
	ErrInvalidSchema = errors.New("invalid response schema")

	// ErrSchemaMismatch is returned when a structured completion does not follow its schema
	ErrSchemaMismatch = errors.New("response does not match schema")

	// ErrInvalidConfig is returned when the provider configuration is invalid
	ErrInvalidConfig = errors.New("invalid provider configuration")

	// ErrProviderRequest is returned when the provider call fails in transport or protocol
	ErrProviderRequest = errors.New("LLM client error")
)
