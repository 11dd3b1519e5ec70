package gemini

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/phrazzld/lazyreader/internal/generation"
	"google.golang.org/genai"
)

// Gemini content roles
const (
	roleUser  = "user"
	roleModel = "model"
)

// convertMessages splits the conversation into the system instruction and the
// chat contents Gemini expects. Consecutive system messages are merged into a
// single instruction with one part each.
func convertMessages(messages []generation.Message) (*genai.Content, []*genai.Content, error) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case generation.RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: msg.Content})

		case generation.RoleUser:
			contents = append(contents, textContent(roleUser, msg.Content))

		case generation.RoleAssistant:
			contents = append(contents, textContent(roleModel, msg.Content))

		default:
			return nil, nil, fmt.Errorf("%w: message %d has unknown role %q",
				generation.ErrInvalidConfig, i, msg.Role)
		}
	}

	if len(contents) == 0 {
		return nil, nil, fmt.Errorf("%w: conversation has no user or assistant messages",
			generation.ErrInvalidConfig)
	}

	return system, contents, nil
}

func textContent(role, text string) *genai.Content {
	return &genai.Content{
		Role:  role,
		Parts: []*genai.Part{{Text: text}},
	}
}

// jsonSchemaNode is the subset of JSON Schema that maps onto genai.Schema
type jsonSchemaNode struct {
	Type        json.RawMessage            `json:"type"`
	Description string                     `json:"description"`
	Format      string                     `json:"format"`
	Enum        []any                      `json:"enum"`
	Properties  map[string]*jsonSchemaNode `json:"properties"`
	Items       *jsonSchemaNode            `json:"items"`
	Required    []string                   `json:"required"`
	AnyOf       []*jsonSchemaNode          `json:"anyOf"`
	Ref         string                     `json:"$ref"`
}

// convertSchema translates a JSON Schema document into the genai schema
// representation. A nil schema yields nil.
func convertSchema(schema *generation.Schema) (*genai.Schema, error) {
	if schema == nil {
		return nil, nil
	}

	var root jsonSchemaNode
	if err := json.Unmarshal(schema.Document, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidSchema, err)
	}

	converted, err := convertNode(&root, "$")
	if err != nil {
		return nil, err
	}
	if converted.Description == "" {
		converted.Description = schema.Description
	}
	return converted, nil
}

func convertNode(node *jsonSchemaNode, path string) (*genai.Schema, error) {
	if node.Ref != "" {
		return nil, fmt.Errorf("%w: reference %q at %s", ErrUnsupportedSchema, node.Ref, path)
	}

	out := &genai.Schema{
		Description: node.Description,
		Format:      node.Format,
		Required:    node.Required,
	}
	for _, value := range node.Enum {
		out.Enum = append(out.Enum, fmt.Sprint(value))
	}

	schemaType, nullable, err := parseType(node.Type, path)
	if err != nil {
		return nil, err
	}
	out.Type = schemaType
	if nullable {
		out.Nullable = &nullable
	}

	if len(node.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(node.Properties))
		names := make([]string, 0, len(node.Properties))
		for name := range node.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			prop, err := convertNode(node.Properties[name], path+"."+name)
			if err != nil {
				return nil, err
			}
			out.Properties[name] = prop
		}
	}

	if node.Items != nil {
		items, err := convertNode(node.Items, path+"[]")
		if err != nil {
			return nil, err
		}
		out.Items = items
	}

	for i, alt := range node.AnyOf {
		converted, err := convertNode(alt, fmt.Sprintf("%s.anyOf[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out.AnyOf = append(out.AnyOf, converted)
	}

	return out, nil
}

// parseType reads a JSON Schema "type" keyword, which may be a single name or
// a list. A list may only combine one concrete type with "null".
func parseType(raw json.RawMessage, path string) (genai.Type, bool, error) {
	if len(raw) == 0 {
		return "", false, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		t, err := mapType(single, path)
		return t, false, err
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", false, fmt.Errorf("%w: malformed type at %s", generation.ErrInvalidSchema, path)
	}

	var (
		concrete string
		nullable bool
	)
	for _, name := range list {
		if name == "null" {
			nullable = true
			continue
		}
		if concrete != "" {
			return "", false, fmt.Errorf("%w: union type %v at %s", ErrUnsupportedSchema, list, path)
		}
		concrete = name
	}

	if concrete == "" {
		return "", false, fmt.Errorf("%w: null-only type at %s", ErrUnsupportedSchema, path)
	}
	t, err := mapType(concrete, path)
	return t, nullable, err
}

func mapType(name, path string) (genai.Type, error) {
	switch strings.ToLower(name) {
	case "string":
		return genai.TypeString, nil
	case "number":
		return genai.TypeNumber, nil
	case "integer":
		return genai.TypeInteger, nil
	case "boolean":
		return genai.TypeBoolean, nil
	case "array":
		return genai.TypeArray, nil
	case "object":
		return genai.TypeObject, nil
	default:
		return "", fmt.Errorf("%w: type %q at %s", ErrUnsupportedSchema, name, path)
	}
}

// responseText concatenates the text parts of the first candidate, skipping
// thought summaries
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
