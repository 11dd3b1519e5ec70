package generation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// Schema is a JSON Schema document that a structured completion must follow
type Schema struct {
	// Name is a short identifier for the schema
	Name string `json:"name"`

	// Description optionally explains the expected output to the model
	Description string `json:"description,omitempty"`

	// Document is the raw JSON Schema
	Document json.RawMessage `json:"document"`
}

// NewSchema validates document as a JSON Schema and wraps it in a Schema
func NewSchema(name, description string, document []byte) (*Schema, error) {
	if len(document) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidSchema)
	}
	if !json.Valid(document) {
		return nil, fmt.Errorf("%w: document is not valid JSON", ErrInvalidSchema)
	}

	if _, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(document)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	return &Schema{
		Name:        name,
		Description: description,
		Document:    json.RawMessage(document),
	}, nil
}

// SchemaFor reflects the JSON Schema of v's type. Definitions are inlined
// because providers generally do not resolve references.
func SchemaFor(name string, v any) (*Schema, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: cannot reflect nil value", ErrInvalidSchema)
	}

	reflector := &jsonschema.Reflector{
		Anonymous:      true,
		ExpandedStruct: true,
		DoNotReference: true,
	}
	reflected := reflector.Reflect(v)
	reflected.Version = ""

	document, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	return NewSchema(name, reflected.Description, document)
}

// Validate checks that a generated text conforms to the schema
func (s *Schema) Validate(text string) error {
	if !json.Valid([]byte(text)) {
		return fmt.Errorf("%w %q: response is not valid JSON", ErrSchemaMismatch, s.Name)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(s.Document),
		gojsonschema.NewStringLoader(text),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		errs = append(errs, errors.New(resultErr.String()))
	}
	return fmt.Errorf("%w %q: %w", ErrSchemaMismatch, s.Name, errors.Join(errs...))
}
