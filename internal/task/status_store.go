package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/lazyreader/internal/events"
	"github.com/puzpuzpuz/xsync/v3"
)

// statusEntry is the value kept per job in the store
type statusEntry struct {
	status    JobStatus
	updatedAt time.Time
}

// InMemoryStatusStore implements StatusStore on top of a sharded concurrent
// map. Writes to distinct jobs never contend, and writes to the same job are
// serialized by the map's per-bucket locking.
type InMemoryStatusStore struct {
	entries *xsync.MapOf[JobID, statusEntry]
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time
}

// NewInMemoryStatusStore creates an empty store. The emitter is optional;
// when set, every accepted status change is published to it.
func NewInMemoryStatusStore(emitter events.EventEmitter, logger *slog.Logger) *InMemoryStatusStore {
	return &InMemoryStatusStore{
		entries: xsync.NewMapOf[JobID, statusEntry](),
		emitter: emitter,
		logger:  logger.With("component", "status_store"),
		now:     time.Now,
	}
}

// Set publishes status for id. Once a job has reached a terminal status the
// entry is frozen and later writes are dropped.
func (s *InMemoryStatusStore) Set(id JobID, status JobStatus) {
	applied := false
	var current JobStatus

	s.entries.Compute(id, func(old statusEntry, loaded bool) (statusEntry, bool) {
		if loaded && old.status.IsTerminal() {
			current = old.status
			return old, false
		}
		applied = true
		return statusEntry{status: status, updatedAt: s.now()}, false
	})

	if !applied {
		s.logger.Debug("ignoring status change for job in terminal state",
			"job_id", id,
			"current_state", current.State,
			"requested_state", status.State)
		return
	}

	if s.emitter == nil {
		return
	}

	event := events.NewStatusChangedEvent(id.String(), string(status.State), status.Detail())
	if err := s.emitter.EmitEvent(context.Background(), event); err != nil {
		s.logger.Warn("status change observer failed",
			"job_id", id,
			"state", status.State,
			"error", err)
	}
}

// Get returns the most recently published status for id
func (s *InMemoryStatusStore) Get(id JobID) (JobStatus, bool) {
	entry, ok := s.entries.Load(id)
	if !ok {
		return JobStatus{}, false
	}
	return entry.status, true
}

// Len returns the number of tracked jobs
func (s *InMemoryStatusStore) Len() int {
	return s.entries.Size()
}

// EvictTerminal removes terminal entries whose last update happened before
// the given time and returns how many were removed. Non-terminal entries are
// never evicted.
func (s *InMemoryStatusStore) EvictTerminal(before time.Time) int {
	var candidates []JobID
	s.entries.Range(func(id JobID, entry statusEntry) bool {
		if entry.status.IsTerminal() && entry.updatedAt.Before(before) {
			candidates = append(candidates, id)
		}
		return true
	})

	evicted := 0
	for _, id := range candidates {
		s.entries.Compute(id, func(old statusEntry, loaded bool) (statusEntry, bool) {
			if !loaded {
				return old, true
			}
			if old.status.IsTerminal() && old.updatedAt.Before(before) {
				evicted++
				return old, true
			}
			return old, false
		})
	}

	return evicted
}

var _ StatusStore = (*InMemoryStatusStore)(nil)
