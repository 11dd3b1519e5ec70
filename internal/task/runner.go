package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// ErrNoTerminalStatus is the failure reason recorded for a task that
// returned without publishing a terminal status
var ErrNoTerminalStatus = errors.New("task exited without reporting a terminal status")

// ErrRunnerStopped is the failure reason recorded for a job submitted after
// Stop was called
var ErrRunnerStopped = errors.New("task runner is stopped")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// MaxConcurrent caps how many tasks execute at once. Zero means unbounded.
	// Submissions beyond the cap are accepted and wait as pending.
	MaxConcurrent int

	// TerminalRetention is how long completed and failed jobs stay queryable.
	// Zero keeps them for the lifetime of the process.
	TerminalRetention time.Duration

	// SweepInterval defines how often expired jobs are evicted.
	// If zero, defaults to 5 minutes
	SweepInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		MaxConcurrent:     DefaultWorkerPoolConfig().MaxConcurrent,
		TerminalRetention: 0,
		SweepInterval:     5 * time.Minute,
	}
}

// terminalEvictor is implemented by stores that can drop expired jobs
type terminalEvictor interface {
	EvictTerminal(before time.Time) int
}

// TaskRunner is the job registry: it issues job identifiers, hands each job's
// task its Handle, schedules execution and answers status queries.
type TaskRunner struct {
	store  StatusStore
	pool   *WorkerPool
	config TaskRunnerConfig
	logger *slog.Logger

	// taskCtx is passed to every task; it is only cancelled when Stop gives up waiting
	taskCtx     context.Context
	cancelTasks context.CancelFunc

	// sweeperCtx controls the retention sweeper
	sweeperCtx    context.Context
	cancelSweeper context.CancelFunc
	wg            sync.WaitGroup
	startOnce     sync.Once
	stopOnce      sync.Once

	// submitMu orders scheduling against Stop so no work is added to the
	// pool once it is being drained
	submitMu sync.RWMutex
	stopped  bool
}

// NewTaskRunner creates a new TaskRunner. Jobs can be submitted right away;
// Start is only needed for the retention sweeper.
func NewTaskRunner(store StatusStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	// Apply default check interval if not specified
	if config.SweepInterval <= 0 {
		config.SweepInterval = 5 * time.Minute
	}

	taskCtx, cancelTasks := context.WithCancel(context.Background())
	sweeperCtx, cancelSweeper := context.WithCancel(context.Background())

	return &TaskRunner{
		store:         store,
		pool:          NewWorkerPool(WorkerPoolConfig{MaxConcurrent: config.MaxConcurrent}, logger),
		config:        config,
		logger:        logger.With("component", "task_runner"),
		taskCtx:       taskCtx,
		cancelTasks:   cancelTasks,
		sweeperCtx:    sweeperCtx,
		cancelSweeper: cancelSweeper,
	}
}

// Submit registers a new pending job, schedules fn for it and returns the
// job's identifier without waiting for fn to run. Once Stop has been called
// the job is recorded as failed with ErrRunnerStopped and fn never runs.
func (r *TaskRunner) Submit(fn TaskFunc) JobID {
	id := NewJobID()
	handle := newHandle(id, r.store)
	handle.SetStatus(Pending())

	r.submitMu.RLock()
	defer r.submitMu.RUnlock()

	if r.stopped {
		r.logger.Warn("job submitted after shutdown began", "job_id", id)
		handle.SetStatus(Failed(ErrRunnerStopped.Error()))
		return id
	}

	r.logger.Debug("job submitted",
		"job_id", id,
		"running", r.pool.Running(),
		"waiting", r.pool.Waiting())

	r.pool.Go(r.taskCtx,
		func(ctx context.Context) {
			r.execute(ctx, handle, fn)
		},
		func(err error) {
			handle.SetStatus(Failed(fmt.Sprintf("job abandoned before start: %v", err)))
		},
	)

	return id
}

// Status returns the current status of a job, or false if the identifier
// was never submitted to this runner
func (r *TaskRunner) Status(id JobID) (JobStatus, bool) {
	return r.store.Get(id)
}

// Running returns the number of tasks currently executing
func (r *TaskRunner) Running() int {
	return r.pool.Running()
}

// Waiting returns the number of submitted tasks waiting for a free slot
func (r *TaskRunner) Waiting() int {
	return r.pool.Waiting()
}

// Start launches background maintenance. It is safe to call more than once.
func (r *TaskRunner) Start() {
	r.startOnce.Do(func() {
		if r.config.TerminalRetention <= 0 {
			return
		}

		evictor, ok := r.store.(terminalEvictor)
		if !ok {
			r.logger.Warn("status store does not support eviction, retention disabled")
			return
		}

		r.wg.Add(1)
		go r.retentionSweeper(evictor)
	})
}

// Stop shuts the runner down. It stops background maintenance and waits for
// in-flight tasks until ctx ends; tasks still running at that point have
// their context cancelled.
func (r *TaskRunner) Stop(ctx context.Context) error {
	var err error
	r.stopOnce.Do(func() {
		r.submitMu.Lock()
		r.stopped = true
		r.submitMu.Unlock()

		r.cancelSweeper()
		r.wg.Wait()

		if waitErr := r.pool.Wait(ctx); waitErr != nil {
			r.logger.Warn("shutdown deadline reached, cancelling in-flight jobs",
				"running", r.pool.Running(),
				"waiting", r.pool.Waiting())
			err = fmt.Errorf("waiting for in-flight jobs: %w", waitErr)
		}
		r.cancelTasks()
	})
	return err
}

// execute runs a single task and contains its failures
func (r *TaskRunner) execute(ctx context.Context, h *Handle, fn TaskFunc) {
	logger := r.logger.With("job_id", h.ID())
	started := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("task panicked",
				"panic", rec,
				"stack", string(debug.Stack()))
			h.SetStatus(Failed(fmt.Sprintf("task panicked: %v", rec)))
			return
		}

		status, _ := r.store.Get(h.ID())
		if !status.IsTerminal() {
			logger.Error("task returned without a terminal status", "state", status.State)
			h.SetStatus(Failed(ErrNoTerminalStatus.Error()))
			return
		}

		logger.Info("job finished",
			"state", status.State,
			"duration_ms", time.Since(started).Milliseconds())
	}()

	logger.Debug("job started")
	fn(ctx, h)
}

// retentionSweeper periodically evicts terminal jobs older than the
// configured retention
func (r *TaskRunner) retentionSweeper(evictor terminalEvictor) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.sweeperCtx.Done():
			return

		case <-ticker.C:
			cutoff := time.Now().Add(-r.config.TerminalRetention)
			if evicted := evictor.EvictTerminal(cutoff); evicted > 0 {
				r.logger.Info("evicted expired jobs",
					"count", evicted,
					"retention", r.config.TerminalRetention.String())
			}
		}
	}
}

// Await blocks until the job reaches a terminal status, polling every interval
func (r *TaskRunner) Await(ctx context.Context, id JobID, interval time.Duration) (JobStatus, error) {
	return AwaitTerminal(ctx, r.store, id, interval)
}
