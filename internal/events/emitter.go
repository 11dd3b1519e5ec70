package events

import (
	"context"
	"log/slog"
	"sync"
)

// subscription binds a handler to the job states it wants to observe
type subscription struct {
	handler EventHandler

	// states filters events by StatusChangedEvent.State; nil means all states
	states map[string]struct{}
}

func (s subscription) wants(state string) bool {
	if s.states == nil {
		return true
	}
	_, ok := s.states[state]
	return ok
}

// InMemoryEventEmitter delivers status changes to subscribed handlers
// synchronously on the goroutine that published the status. Handlers see
// the events of one job in publication order.
type InMemoryEventEmitter struct {
	mu            sync.RWMutex
	subscriptions []subscription
	logger        *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no subscribers
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		logger: logger.With("component", "status_event_emitter"),
	}
}

// RegisterHandler subscribes handler to every status change
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.Subscribe(handler)
}

// Subscribe registers handler for status changes into one of states.
// Without states the handler receives every status change.
func (e *InMemoryEventEmitter) Subscribe(handler EventHandler, states ...string) {
	sub := subscription{handler: handler}
	if len(states) > 0 {
		sub.states = make(map[string]struct{}, len(states))
		for _, state := range states {
			sub.states[state] = struct{}{}
		}
	}

	e.mu.Lock()
	e.subscriptions = append(e.subscriptions, sub)
	e.mu.Unlock()

	e.logger.Debug("status handler subscribed", "states", states)
}

// EmitEvent delivers event to each handler subscribed to its state. A failing
// handler does not stop delivery to the others; the first error is returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *StatusChangedEvent) error {
	e.mu.RLock()
	subscriptions := e.subscriptions
	e.mu.RUnlock()

	var firstErr error
	for _, sub := range subscriptions {
		if !sub.wants(event.State) {
			continue
		}
		if err := sub.handler.HandleEvent(ctx, event); err != nil {
			e.logger.ErrorContext(ctx, "status handler failed",
				"error", err,
				"job_id", event.JobID,
				"state", event.State)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)
