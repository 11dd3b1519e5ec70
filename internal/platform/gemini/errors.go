package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrContentBlocked is returned when the model refused to answer for safety reasons.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrUnsupportedSchema is returned when a JSON Schema uses constructs Gemini cannot express.
	ErrUnsupportedSchema = errors.New("schema not supported by gemini")
)
