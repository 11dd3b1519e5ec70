package generation

import (
	"context"
	"log/slog"
	"time"
)

// Role identifies the author of a chat message
type Role string

// Supported message roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single chat message sent to a provider
type Message struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// UserMessages builds a conversation of user messages, one per content string
func UserMessages(contents ...string) []Message {
	messages := make([]Message, 0, len(contents))
	for _, content := range contents {
		messages = append(messages, Message{Role: RoleUser, Content: content})
	}
	return messages
}

// ProviderConfig contains everything needed to instantiate a provider client
type ProviderConfig struct {
	// Backend selects the provider family
	Backend Backend

	// Model is the provider-specific model identifier
	Model string

	// MaxTokens caps the length of the generated response
	MaxTokens int32

	// Temperature controls sampling randomness
	Temperature float32

	// APIKey is the credential used to authenticate with the provider
	APIKey string

	// RequestTimeout bounds a single provider call; zero means no timeout
	RequestTimeout time.Duration
}

// LogValue implements slog.LogValuer and never includes the API key
func (c ProviderConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", string(c.Backend)),
		slog.String("model", c.Model),
		slog.Int("max_tokens", int(c.MaxTokens)),
		slog.Float64("temperature", float64(c.Temperature)),
		slog.Bool("api_key_present", c.APIKey != ""),
		slog.Duration("request_timeout", c.RequestTimeout),
	)
}

// Response is the answer returned by a provider
type Response interface {
	// Text returns the generated text, or false when the response has none
	Text() (string, bool)
}

// Provider is a chat-capable LLM client
type Provider interface {
	// Chat sends the conversation to the model and returns its answer
	Chat(ctx context.Context, messages []Message) (Response, error)
}

// ProviderFactory instantiates providers for one backend
type ProviderFactory interface {
	// NewProvider creates a provider from cfg. When schema is non-nil the
	// provider must constrain its output to the schema.
	NewProvider(ctx context.Context, cfg ProviderConfig, schema *Schema) (Provider, error)
}

// TextResponse is a Response backed by a plain string; an empty string
// counts as no text
type TextResponse string

// Text implements Response
func (r TextResponse) Text() (string, bool) {
	return string(r), r != ""
}
