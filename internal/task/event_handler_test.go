package task

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/lazyreader/internal/events"
	"github.com/phrazzld/lazyreader/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLogHandler(t *testing.T) {
	t.Parallel()

	logger, logs := testutils.NewCaptureLogger()
	handler := NewStatusLogHandler(logger)
	ctx := context.Background()

	require.NoError(t, handler.HandleEvent(ctx, events.NewStatusChangedEvent("job-1", string(StatePending), "")))
	require.NoError(t, handler.HandleEvent(ctx, events.NewStatusChangedEvent("job-1", string(StateInProgress), "")))
	require.NoError(t, handler.HandleEvent(ctx, events.NewStatusChangedEvent("job-1", string(StateCompleted), "four")))
	require.NoError(t, handler.HandleEvent(ctx, events.NewStatusChangedEvent("job-2", string(StateFailed),
		"LLM client error: bad api_key=abcdefghijklmnop")))

	changed := logs.EntriesWithMessage("job status changed")
	require.Len(t, changed, 2)
	assert.Equal(t, "DEBUG", changed[0].Level())
	assert.Equal(t, "status_log_handler", changed[0]["component"])

	completed := logs.EntriesWithMessage("job completed")
	require.Len(t, completed, 1)
	assert.Equal(t, int64(4), completed[0]["result_length"])
	assert.NotContains(t, completed[0], "result", "results are not logged")

	failed := logs.EntriesWithMessage("job failed")
	require.Len(t, failed, 1)
	assert.Equal(t, "job-2", failed[0]["job_id"])
	assert.Equal(t, "LLM client error: bad [REDACTED_KEY]", failed[0]["reason"])
}

func TestJobStats(t *testing.T) {
	t.Parallel()

	logger := setupTestLogger()
	stats := NewJobStats()
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.Subscribe(stats, stats.CountedStates()...)

	store := NewInMemoryStatusStore(emitter, logger)
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), logger)
	t.Cleanup(func() { _ = runner.Stop(context.Background()) })

	ok := runner.Submit(completeWith("fine"))
	bad := runner.Submit(func(_ context.Context, h *Handle) {
		h.SetStatus(InProgress())
		h.SetStatus(Failed("broken"))
	})
	awaitTerminal(t, store, ok)
	awaitTerminal(t, store, bad)

	// observers run after the write becomes visible
	require.Eventually(t, func() bool {
		s := stats.Snapshot()
		return s.Completed+s.Failed == 2
	}, time.Second, 5*time.Millisecond)

	snapshot := stats.Snapshot()
	assert.Equal(t, int64(2), snapshot.Submitted)
	assert.Equal(t, int64(1), snapshot.Completed)
	assert.Equal(t, int64(1), snapshot.Failed)
}
