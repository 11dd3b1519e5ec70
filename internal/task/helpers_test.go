package task

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// discardLogger drops everything, for tests that submit many jobs
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRunner creates a runner backed by a fresh in-memory store and stops
// it when the test ends
func newTestRunner(t *testing.T, config TaskRunnerConfig) (*TaskRunner, *InMemoryStatusStore) {
	t.Helper()

	logger := discardLogger()
	store := NewInMemoryStatusStore(nil, logger)
	runner := NewTaskRunner(store, config, logger)
	runner.Start()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runner.Stop(ctx)
	})

	return runner, store
}

// awaitTerminal waits up to five seconds for the job to finish
func awaitTerminal(t *testing.T, reader StatusReader, id JobID) JobStatus {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := AwaitTerminal(ctx, reader, id, 5*time.Millisecond)
	require.NoError(t, err, "job %s did not reach a terminal status", id)
	return status
}

// completeWith returns a task that immediately completes with result
func completeWith(result string) TaskFunc {
	return func(_ context.Context, h *Handle) {
		h.SetStatus(Completed(result))
	}
}

// blockUntil returns a task that reports progress, waits for release and
// then completes with result
func blockUntil(release <-chan struct{}, result string) TaskFunc {
	return func(ctx context.Context, h *Handle) {
		h.SetStatus(InProgress())
		select {
		case <-release:
			h.SetStatus(Completed(result))
		case <-ctx.Done():
			h.SetStatus(Failed(ctx.Err().Error()))
		}
	}
}
