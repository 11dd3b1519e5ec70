package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/phrazzld/lazyreader/internal/config"
	"github.com/phrazzld/lazyreader/internal/generation"
	"github.com/phrazzld/lazyreader/internal/task"
)

// JobRunner defines the interface for submitting background jobs
type JobRunner interface {
	// Submit schedules fn and returns the new job's identifier immediately
	Submit(fn task.TaskFunc) task.JobID

	// Status returns the job's current status, or false for unknown jobs
	Status(id task.JobID) (task.JobStatus, bool)
}

// ProviderFactories maps each backend to the factory that can serve it
type ProviderFactories map[generation.Backend]generation.ProviderFactory

// CompletionService submits LLM completions as background jobs
type CompletionService interface {
	// Submit starts a completion for messages, constrained to schema when it
	// is non-nil, and returns the job identifier without waiting
	Submit(messages []generation.Message, schema *generation.Schema) task.JobID

	// JobStatus returns the current status of a job, or false for unknown jobs
	JobStatus(id task.JobID) (task.JobStatus, bool)
}

// completionServiceImpl implements the CompletionService interface
type completionServiceImpl struct {
	factory        generation.ProviderFactory
	providerConfig generation.ProviderConfig
	validateOutput bool
	runner         JobRunner
	logger         *slog.Logger
}

// NewCompletionService builds the service for the backend named in cfg.
// It fails when the backend is unknown or has no factory, when no credential
// can be found for it, or when the limits in cfg do not fit the provider.
func NewCompletionService(
	cfg config.LLMConfig,
	factories ProviderFactories,
	runner JobRunner,
	logger *slog.Logger,
) (CompletionService, error) {
	const op = "new_completion_service"

	if runner == nil {
		return nil, ErrNilRunner
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	backend, err := generation.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, NewCompletionServiceError(op, "invalid backend", err)
	}

	factory, ok := factories[backend]
	if !ok || factory == nil {
		return nil, NewCompletionServiceError(op, "no provider available",
			fmt.Errorf("%w: %s", generation.ErrUnsupportedBackend, backend))
	}

	apiKey, err := generation.ResolveAPIKey(backend, cfg.APIKey, nil)
	if err != nil {
		return nil, NewCompletionServiceError(op, "credential unavailable", err)
	}

	if cfg.MaxTokens <= 0 || cfg.MaxTokens > math.MaxInt32 {
		return nil, NewCompletionServiceError(op, "invalid limits",
			fmt.Errorf("%w: max tokens %d out of range", generation.ErrInvalidConfig, cfg.MaxTokens))
	}

	providerConfig := generation.ProviderConfig{
		Backend:        backend,
		Model:          cfg.Model,
		MaxTokens:      int32(cfg.MaxTokens),
		Temperature:    float32(cfg.Temperature),
		APIKey:         apiKey,
		RequestTimeout: cfg.RequestTimeout(),
	}

	svcLogger := logger.With("component", "completion_service")
	svcLogger.Info("completion service ready", "provider", providerConfig)

	return &completionServiceImpl{
		factory:        factory,
		providerConfig: providerConfig,
		validateOutput: cfg.ValidateStructuredOutput,
		runner:         runner,
		logger:         svcLogger,
	}, nil
}

// Submit implements CompletionService
func (s *completionServiceImpl) Submit(messages []generation.Message, schema *generation.Schema) task.JobID {
	fn, err := task.NewCompletionTask(s.factory, task.CompletionRequest{
		Config:         s.providerConfig,
		Messages:       messages,
		Schema:         schema,
		ValidateOutput: s.validateOutput,
	}, s.logger)
	if err != nil {
		// The job still exists so the caller learns about the problem by polling
		reason := err.Error()
		fn = func(_ context.Context, h *task.Handle) {
			h.SetStatus(task.Failed(reason))
		}
	}

	id := s.runner.Submit(fn)
	s.logger.Debug("completion submitted",
		"job_id", id,
		"messages", len(messages),
		"structured", schema != nil)
	return id
}

// JobStatus implements CompletionService
func (s *completionServiceImpl) JobStatus(id task.JobID) (task.JobStatus, bool) {
	return s.runner.Status(id)
}
