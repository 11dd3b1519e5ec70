package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/lazyreader/internal/generation"
	"github.com/phrazzld/lazyreader/internal/redact"
)

// Common errors
var (
	ErrNilProviderFactory = errors.New("provider factory cannot be nil")
	ErrNilLogger          = errors.New("logger cannot be nil")
	ErrNoMessages         = errors.New("completion request has no messages")
)

// CompletionRequest describes a single LLM invocation. It is captured by
// value when the task is built, so later changes by the caller do not leak
// into a running job.
type CompletionRequest struct {
	// Config selects and configures the provider instantiated for this job
	Config generation.ProviderConfig

	// Messages is the conversation sent to the model
	Messages []generation.Message

	// Schema constrains the answer to structured JSON when set
	Schema *generation.Schema

	// ValidateOutput checks the answer against Schema before completing the job
	ValidateOutput bool
}

// NewCompletionTask builds the TaskFunc that performs one completion:
// instantiate a provider, mark the job in progress, call the model, and
// publish either the answer text or the failure as the job's terminal status.
// There are no retries.
func NewCompletionTask(
	factory generation.ProviderFactory,
	req CompletionRequest,
	logger *slog.Logger,
) (TaskFunc, error) {
	if factory == nil {
		return nil, ErrNilProviderFactory
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if len(req.Messages) == 0 {
		return nil, ErrNoMessages
	}

	messages := make([]generation.Message, len(req.Messages))
	copy(messages, req.Messages)
	req.Messages = messages

	return func(ctx context.Context, h *Handle) {
		logger := logger.With(
			"job_id", h.ID(),
			"backend", req.Config.Backend,
			"model", req.Config.Model)

		text, err := runCompletion(ctx, factory, req, h, logger)
		if err != nil {
			logger.ErrorContext(ctx, "completion failed", "error", redact.Error(err))
			h.SetStatus(Failed(err.Error()))
			return
		}

		logger.InfoContext(ctx, "completion succeeded", "response_length", len(text))
		h.SetStatus(Completed(text))
	}, nil
}

// runCompletion performs the provider round trip and returns the answer text
func runCompletion(
	ctx context.Context,
	factory generation.ProviderFactory,
	req CompletionRequest,
	h *Handle,
	logger *slog.Logger,
) (string, error) {
	provider, err := factory.NewProvider(ctx, req.Config, req.Schema)
	if err != nil {
		return "", fmt.Errorf("failed to create provider: %w", err)
	}

	h.SetStatus(InProgress())
	logger.DebugContext(ctx, "calling provider",
		"messages", len(req.Messages),
		"structured", req.Schema != nil)

	started := time.Now()
	resp, err := provider.Chat(ctx, req.Messages)
	if err != nil {
		return "", err
	}
	logger.DebugContext(ctx, "provider answered", "duration_ms", time.Since(started).Milliseconds())

	if resp == nil {
		return "", generation.ErrEmptyResponse
	}
	text, ok := resp.Text()
	if !ok {
		return "", generation.ErrEmptyResponse
	}

	if req.Schema != nil && req.ValidateOutput {
		if err := req.Schema.Validate(text); err != nil {
			return "", err
		}
	}

	return text, nil
}
