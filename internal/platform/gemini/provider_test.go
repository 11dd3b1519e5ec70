package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/lazyreader/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// newTestLogger creates a logger for testing
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeModels records the last request and replies with a canned answer
type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      textContent(roleModel, text),
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func validConfig() generation.ProviderConfig {
	return generation.ProviderConfig{
		Backend:        generation.BackendGoogle,
		Model:          "gemini-2.5-pro",
		MaxTokens:      8192,
		Temperature:    0.7,
		APIKey:         "test-key",
		RequestTimeout: 30 * time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*generation.ProviderConfig)
		expectedErr error
	}{
		{name: "valid", mutate: func(*generation.ProviderConfig) {}},
		{
			name:        "missing key",
			mutate:      func(c *generation.ProviderConfig) { c.APIKey = "" },
			expectedErr: generation.ErrMissingAPIKey,
		},
		{
			name:        "missing model",
			mutate:      func(c *generation.ProviderConfig) { c.Model = "" },
			expectedErr: generation.ErrInvalidConfig,
		},
		{
			name:        "negative max tokens",
			mutate:      func(c *generation.ProviderConfig) { c.MaxTokens = -1 },
			expectedErr: generation.ErrInvalidConfig,
		},
		{
			name:        "temperature too high",
			mutate:      func(c *generation.ProviderConfig) { c.Temperature = 2.5 },
			expectedErr: generation.ErrInvalidConfig,
		},
		{
			name:        "negative timeout",
			mutate:      func(c *generation.ProviderConfig) { c.RequestTimeout = -time.Second },
			expectedErr: generation.ErrInvalidConfig,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(&cfg)

			err := validateConfig(cfg)
			if tc.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestFactory_NewProvider(t *testing.T) {
	t.Parallel()

	factory := NewFactory(newTestLogger())

	t.Run("creates provider without network access", func(t *testing.T) {
		t.Parallel()

		provider, err := factory.NewProvider(context.Background(), validConfig(), nil)
		require.NoError(t, err)
		assert.NotNil(t, provider)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.APIKey = ""
		provider, err := factory.NewProvider(context.Background(), cfg, nil)
		assert.ErrorIs(t, err, generation.ErrMissingAPIKey)
		assert.Nil(t, provider)
	})

	t.Run("unsupported schema", func(t *testing.T) {
		t.Parallel()

		schema := &generation.Schema{Name: "union", Document: []byte(`{"type": ["string", "number"]}`)}
		_, err := factory.NewProvider(context.Background(), validConfig(), schema)
		assert.ErrorIs(t, err, ErrUnsupportedSchema)
	})
}

// connTracker counts server-side connections that are not yet closed
type connTracker struct {
	mu   sync.Mutex
	open map[net.Conn]struct{}
}

func (c *connTracker) track(conn net.Conn, state http.ConnState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch state {
	case http.StateNew:
		c.open[conn] = struct{}{}
	case http.StateClosed, http.StateHijacked:
		delete(c.open, conn)
	}
}

func (c *connTracker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.open)
}

func TestFactory_SharesTransport(t *testing.T) {
	t.Parallel()

	factory := NewFactory(newTestLogger())

	first := factory.httpClient(10 * time.Second)
	second := factory.httpClient(time.Minute)

	assert.Same(t, first.Transport, second.Transport)
	assert.Equal(t, 10*time.Second, first.Timeout)
	assert.Equal(t, time.Minute, second.Timeout)
}

func TestFactory_ReusesConnectionsAcrossJobs(t *testing.T) {
	t.Parallel()

	tracker := &connTracker{open: make(map[net.Conn]struct{})}
	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	server.Config.ConnState = tracker.track
	server.Start()
	defer server.Close()

	factory := NewFactory(newTestLogger())

	// one client per job, as NewProvider does
	for i := 0; i < 20; i++ {
		resp, err := factory.httpClient(5 * time.Second).Get(server.URL)
		require.NoError(t, err)
		_, err = io.Copy(io.Discard, resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
	}

	assert.Equal(t, 1, tracker.count(), "finished jobs must not leave their own idle connections behind")

	factory.CloseIdleConnections()
	require.Eventually(t, func() bool { return tracker.count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestProvider_Chat(t *testing.T) {
	t.Parallel()

	t.Run("plain completion", func(t *testing.T) {
		t.Parallel()

		models := &fakeModels{resp: textResponse("Paris")}
		provider := newProvider(models, validConfig(), nil, newTestLogger())

		resp, err := provider.Chat(context.Background(), []generation.Message{
			{Role: generation.RoleSystem, Content: "Be brief."},
			{Role: generation.RoleUser, Content: "Capital of France?"},
		})
		require.NoError(t, err)

		text, ok := resp.Text()
		assert.True(t, ok)
		assert.Equal(t, "Paris", text)

		assert.Equal(t, "gemini-2.5-pro", models.model)
		require.Len(t, models.contents, 1)
		require.NotNil(t, models.config.SystemInstruction)
		assert.Equal(t, "Be brief.", models.config.SystemInstruction.Parts[0].Text)
		assert.Equal(t, int32(8192), models.config.MaxOutputTokens)
		require.NotNil(t, models.config.Temperature)
		assert.InDelta(t, 0.7, *models.config.Temperature, 0.0001)
		assert.Empty(t, models.config.ResponseMIMEType)
		assert.Nil(t, models.config.ResponseSchema)
	})

	t.Run("structured completion", func(t *testing.T) {
		t.Parallel()

		responseSchema := &genai.Schema{Type: genai.TypeObject}
		models := &fakeModels{resp: textResponse(`{"ok":true}`)}
		provider := newProvider(models, validConfig(), responseSchema, newTestLogger())

		_, err := provider.Chat(context.Background(), generation.UserMessages("answer in json"))
		require.NoError(t, err)

		assert.Equal(t, "application/json", models.config.ResponseMIMEType)
		assert.Same(t, responseSchema, models.config.ResponseSchema)
	})

	t.Run("empty answer has no text", func(t *testing.T) {
		t.Parallel()

		models := &fakeModels{resp: &genai.GenerateContentResponse{}}
		provider := newProvider(models, validConfig(), nil, newTestLogger())

		resp, err := provider.Chat(context.Background(), generation.UserMessages("hello"))
		require.NoError(t, err)

		_, ok := resp.Text()
		assert.False(t, ok)
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()

		models := &fakeModels{err: errors.New("dial tcp: connection refused")}
		provider := newProvider(models, validConfig(), nil, newTestLogger())

		_, err := provider.Chat(context.Background(), generation.UserMessages("hello"))
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrProviderRequest)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		models := &fakeModels{resp: textResponse("unused")}
		provider := newProvider(models, validConfig(), nil, newTestLogger())

		_, err := provider.Chat(ctx, generation.UserMessages("hello"))
		assert.ErrorIs(t, err, generation.ErrProviderRequest)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("blocked by safety filter", func(t *testing.T) {
		t.Parallel()

		models := &fakeModels{resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}}
		provider := newProvider(models, validConfig(), nil, newTestLogger())

		_, err := provider.Chat(context.Background(), generation.UserMessages("hello"))
		assert.ErrorIs(t, err, ErrContentBlocked)
	})

	t.Run("invalid conversation is rejected before the call", func(t *testing.T) {
		t.Parallel()

		models := &fakeModels{resp: textResponse("unused")}
		provider := newProvider(models, validConfig(), nil, newTestLogger())

		_, err := provider.Chat(context.Background(), nil)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
		assert.Empty(t, models.model)
	})
}
