package events

import (
	"context"
	"time"
)

// StatusChangedEvent describes a status published for a job.
// It carries plain strings so that the events package stays independent
// of the task package.
type StatusChangedEvent struct {
	// JobID identifies the job whose status changed
	JobID string `json:"job_id"`

	// State is the new state name (pending, in_progress, completed, failed)
	State string `json:"state"`

	// Detail holds the result text for completed jobs and the failure
	// reason for failed jobs. Empty otherwise.
	Detail string `json:"detail,omitempty"`

	// OccurredAt is the time the status was published
	OccurredAt time.Time `json:"occurred_at"`
}

// NewStatusChangedEvent creates a StatusChangedEvent stamped with the current time.
func NewStatusChangedEvent(jobID, state, detail string) *StatusChangedEvent {
	return &StatusChangedEvent{
		JobID:      jobID,
		State:      state,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *StatusChangedEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *StatusChangedEvent) error
}

// EventHandlerFunc adapts an ordinary function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *StatusChangedEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *StatusChangedEvent) error {
	return f(ctx, event)
}
