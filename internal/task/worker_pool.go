package task

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// WorkerPool runs submitted work on its own goroutine while bounding how
// many pieces of work execute at the same time. Scheduling never blocks the
// caller: work waiting for a free slot parks on its goroutine.
type WorkerPool struct {
	// sem limits concurrent execution; nil means unbounded
	sem *semaphore.Weighted

	// maxConcurrent is the configured limit, 0 when unbounded
	maxConcurrent int

	// wg tracks every scheduled goroutine for draining on shutdown
	wg sync.WaitGroup

	// running counts work currently holding a slot
	running atomic.Int64

	// waiting counts work parked until a slot frees up
	waiting atomic.Int64

	logger *slog.Logger
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// MaxConcurrent caps how many tasks execute at once.
	// Zero disables the cap; negative values are treated as zero.
	MaxConcurrent int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		MaxConcurrent: 16,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent < 0 {
		logger.Warn("invalid max concurrency specified, running without a limit",
			"specified_max_concurrent", config.MaxConcurrent)
		maxConcurrent = 0
	}

	pool := &WorkerPool{
		maxConcurrent: maxConcurrent,
		logger:        logger.With("component", "worker_pool"),
	}
	if maxConcurrent > 0 {
		pool.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}

	return pool
}

// Go schedules run on a new goroutine and returns immediately. The goroutine
// waits for a free slot before calling run. If ctx ends before a slot is
// acquired, abandon is called with the context error instead of run.
// Callers must not call Go concurrently with a Wait that may observe an
// empty pool.
func (p *WorkerPool) Go(ctx context.Context, run func(ctx context.Context), abandon func(err error)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if p.sem != nil {
			p.waiting.Add(1)
			err := p.sem.Acquire(ctx, 1)
			p.waiting.Add(-1)
			if err != nil {
				p.logger.Warn("work abandoned before it could start", "error", err)
				abandon(err)
				return
			}
			defer p.sem.Release(1)
		}

		p.running.Add(1)
		defer p.running.Add(-1)

		run(ctx)
	}()
}

// Wait blocks until all scheduled work has returned or ctx ends
func (p *WorkerPool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running returns the number of tasks currently executing
func (p *WorkerPool) Running() int {
	return int(p.running.Load())
}

// Waiting returns the number of tasks parked until a slot frees up
func (p *WorkerPool) Waiting() int {
	return int(p.waiting.Load())
}

// MaxConcurrent returns the configured limit, 0 when unbounded
func (p *WorkerPool) MaxConcurrent() int {
	return p.maxConcurrent
}
