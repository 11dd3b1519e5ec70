package task

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/phrazzld/lazyreader/internal/events"
	"github.com/phrazzld/lazyreader/internal/redact"
)

// StatusLogHandler implements events.EventHandler by writing one log line per
// published status. Results are logged by length only.
type StatusLogHandler struct {
	logger *slog.Logger
}

// NewStatusLogHandler creates a handler that logs status changes
func NewStatusLogHandler(logger *slog.Logger) *StatusLogHandler {
	return &StatusLogHandler{
		logger: logger.With("component", "status_log_handler"),
	}
}

// HandleEvent logs the status change carried by event
func (h *StatusLogHandler) HandleEvent(ctx context.Context, event *events.StatusChangedEvent) error {
	switch State(event.State) {
	case StateCompleted:
		h.logger.InfoContext(ctx, "job completed",
			"job_id", event.JobID,
			"result_length", len(event.Detail))
	case StateFailed:
		h.logger.InfoContext(ctx, "job failed",
			"job_id", event.JobID,
			"reason", redact.String(event.Detail))
	default:
		h.logger.DebugContext(ctx, "job status changed",
			"job_id", event.JobID,
			"state", event.State)
	}
	return nil
}

// JobStats implements events.EventHandler by counting status changes
type JobStats struct {
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// JobStatsSnapshot is a point-in-time copy of JobStats
type JobStatsSnapshot struct {
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// NewJobStats creates an empty counter set
func NewJobStats() *JobStats {
	return &JobStats{}
}

// HandleEvent counts the status change carried by event
func (s *JobStats) HandleEvent(_ context.Context, event *events.StatusChangedEvent) error {
	switch State(event.State) {
	case StatePending:
		s.submitted.Add(1)
	case StateCompleted:
		s.completed.Add(1)
	case StateFailed:
		s.failed.Add(1)
	}
	return nil
}

// CountedStates lists the states HandleEvent counts, for use with
// events.InMemoryEventEmitter.Subscribe
func (s *JobStats) CountedStates() []string {
	return []string{string(StatePending), string(StateCompleted), string(StateFailed)}
}

// Snapshot returns the current counters
func (s *JobStats) Snapshot() JobStatsSnapshot {
	return JobStatsSnapshot{
		Submitted: s.submitted.Load(),
		Completed: s.completed.Load(),
		Failed:    s.failed.Load(),
	}
}

// Ensure the handlers implement events.EventHandler
var (
	_ events.EventHandler = (*StatusLogHandler)(nil)
	_ events.EventHandler = (*JobStats)(nil)
)
