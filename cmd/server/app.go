package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lazyreader/internal/config"
	"github.com/phrazzld/lazyreader/internal/events"
	"github.com/phrazzld/lazyreader/internal/service"
	"github.com/phrazzld/lazyreader/internal/task"
)

// idleConnectionCloser is implemented by provider factories that pool
// connections across jobs
type idleConnectionCloser interface {
	CloseIdleConnections()
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger

	// Event system
	eventEmitter *events.InMemoryEventEmitter
	jobStats     *task.JobStats

	// Providers
	providerFactories service.ProviderFactories

	// Job handling
	statusStore       *task.InMemoryStatusStore
	taskRunner        *task.TaskRunner
	completionService service.CompletionService
}

// newApplication creates a new application instance with all dependencies
// initialized. The task runner is started; callers own its shutdown through
// Run or cleanup.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	factories service.ProviderFactories,
) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	app := &application{
		config:            cfg,
		logger:            logger,
		jobStats:          task.NewJobStats(),
		providerFactories: factories,
	}

	// Status changes fan out to the log and the health counters
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(task.NewStatusLogHandler(logger))
	app.eventEmitter.Subscribe(app.jobStats, app.jobStats.CountedStates()...)

	app.statusStore = task.NewInMemoryStatusStore(app.eventEmitter, logger)
	app.taskRunner = task.NewTaskRunner(app.statusStore, task.TaskRunnerConfig{
		MaxConcurrent:     cfg.Task.MaxConcurrent,
		TerminalRetention: cfg.Task.Retention(),
		SweepInterval:     cfg.Task.SweepInterval(),
	}, logger)

	var err error
	app.completionService, err = service.NewCompletionService(cfg.LLM, factories, app.taskRunner, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion service: %w", err)
	}

	app.taskRunner.Start()

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns when ctx is cancelled or the server fails.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the task runner, waiting for running jobs until ctx ends
func (app *application) cleanup(ctx context.Context) {
	if app.taskRunner != nil {
		if err := app.taskRunner.Stop(ctx); err != nil {
			app.logger.Warn("Task runner did not drain before shutdown deadline",
				"error", err,
				"running", app.taskRunner.Running(),
				"waiting", app.taskRunner.Waiting())
		}
	}

	// Release pooled provider connections once no job can use them
	for backend, factory := range app.providerFactories {
		if closer, ok := factory.(idleConnectionCloser); ok {
			closer.CloseIdleConnections()
			app.logger.Debug("Closed idle provider connections", "backend", backend)
		}
	}

	app.logger.Info("Application shutdown completed")
}
