package generation

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserMessages(t *testing.T) {
	t.Parallel()

	messages := UserMessages("first", "second")

	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleUser, Content: "second"},
	}, messages)
	assert.Empty(t, UserMessages())
}

func TestTextResponse(t *testing.T) {
	t.Parallel()

	text, ok := TextResponse("hello").Text()
	assert.True(t, ok)
	assert.Equal(t, "hello", text)

	_, ok = TextResponse("").Text()
	assert.False(t, ok)
}

func TestProviderConfig_LogValueHidesAPIKey(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	cfg := ProviderConfig{
		Backend:        BackendGoogle,
		Model:          "gemini-2.5-pro",
		MaxTokens:      8192,
		Temperature:    0.7,
		APIKey:         "super-secret-key",
		RequestTimeout: time.Minute,
	}
	logger.Info("provider configured", "provider", cfg)

	output := buf.String()
	assert.NotContains(t, output, "super-secret-key")
	assert.Contains(t, output, `"api_key_present":true`)
	assert.Contains(t, output, `"model":"gemini-2.5-pro"`)
}
