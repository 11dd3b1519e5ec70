package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/phrazzld/lazyreader/internal/generation"
	"github.com/phrazzld/lazyreader/internal/redact"
	"google.golang.org/genai"
)

// maxTemperature is the upper bound Gemini accepts for sampling temperature
const maxTemperature = 2.0

// contentGenerator is the slice of the genai client the provider uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Factory creates Gemini providers. It implements generation.ProviderFactory.
type Factory struct {
	logger *slog.Logger

	// transport is shared by every provider the factory creates, so jobs
	// reuse pooled connections instead of each holding its own
	transport *http.Transport
}

var _ generation.ProviderFactory = (*Factory)(nil)

// NewFactory creates a Factory that logs through logger
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		logger:    logger.With("component", "gemini"),
		transport: cleanhttp.DefaultPooledTransport(),
	}
}

// httpClient returns a client on the shared transport. A zero timeout means
// no timeout.
func (f *Factory) httpClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: f.transport,
		Timeout:   timeout,
	}
}

// CloseIdleConnections closes pooled connections that no request is using
func (f *Factory) CloseIdleConnections() {
	f.transport.CloseIdleConnections()
}

// NewProvider validates cfg and creates a provider bound to a fresh genai
// client on the factory's shared transport. When schema is non-nil every
// answer is constrained to it.
func (f *Factory) NewProvider(
	ctx context.Context,
	cfg generation.ProviderConfig,
	schema *generation.Schema,
) (generation.Provider, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	responseSchema, err := convertSchema(schema)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: f.httpClient(cfg.RequestTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	f.logger.DebugContext(ctx, "created gemini provider",
		"config", cfg,
		"structured", schema != nil)

	return newProvider(client.Models, cfg, responseSchema, f.logger), nil
}

// validateConfig rejects configurations Gemini cannot serve
func validateConfig(cfg generation.ProviderConfig) error {
	if cfg.APIKey == "" {
		return generation.ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MaxTokens < 0 {
		return fmt.Errorf("%w: max tokens cannot be negative", generation.ErrInvalidConfig)
	}
	if cfg.Temperature < 0 || cfg.Temperature > maxTemperature {
		return fmt.Errorf("%w: temperature must be between 0 and %.1f",
			generation.ErrInvalidConfig, maxTemperature)
	}
	if cfg.RequestTimeout < 0 {
		return fmt.Errorf("%w: request timeout cannot be negative", generation.ErrInvalidConfig)
	}
	return nil
}

// Provider sends chat requests to a single Gemini model
type Provider struct {
	models         contentGenerator
	model          string
	maxTokens      int32
	temperature    float32
	responseSchema *genai.Schema
	logger         *slog.Logger
}

func newProvider(
	models contentGenerator,
	cfg generation.ProviderConfig,
	responseSchema *genai.Schema,
	logger *slog.Logger,
) *Provider {
	return &Provider{
		models:         models,
		model:          cfg.Model,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		responseSchema: responseSchema,
		logger:         logger,
	}
}

// Chat implements generation.Provider
func (p *Provider) Chat(ctx context.Context, messages []generation.Message) (generation.Response, error) {
	system, contents, err := convertMessages(messages)
	if err != nil {
		return nil, err
	}

	resp, err := p.models.GenerateContent(ctx, p.model, contents, p.requestConfig(system))
	if err != nil {
		p.logger.WarnContext(ctx, "gemini call failed", "model", p.model, "error", redact.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", generation.ErrProviderRequest, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", generation.ErrProviderRequest, err)
	}

	if blocked(resp) {
		return nil, fmt.Errorf("%w: %w", generation.ErrProviderRequest, ErrContentBlocked)
	}

	text := responseText(resp)
	p.logger.DebugContext(ctx, "gemini call succeeded",
		"model", p.model,
		"response_length", len(text))

	return generation.TextResponse(text), nil
}

// requestConfig builds the per-call generation settings
func (p *Provider) requestConfig(system *genai.Content) *genai.GenerateContentConfig {
	temperature := p.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       &temperature,
		MaxOutputTokens:   p.maxTokens,
	}

	if p.responseSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = p.responseSchema
	}

	return config
}

// blocked reports whether the prompt or the only candidate was stopped by
// safety filtering
func blocked(resp *genai.GenerateContentResponse) bool {
	if resp == nil {
		return false
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return true
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return false
	}
	return resp.Candidates[0].FinishReason == genai.FinishReasonSafety
}
