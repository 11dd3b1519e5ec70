package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewStatusChangedEvent(t *testing.T) {
	event := NewStatusChangedEvent("job-1", "completed", "Paris")

	assert.Equal(t, "job-1", event.JobID)
	assert.Equal(t, "completed", event.State)
	assert.Equal(t, "Paris", event.Detail)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, 2*time.Second)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	mu sync.Mutex
	// The last event received by this handler
	LastEvent *StatusChangedEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *StatusChangedEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandler(t *testing.T) {
	handler := &MockEventHandler{}
	event := NewStatusChangedEvent("job-1", "pending", "")

	err := handler.HandleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, 1, handler.HandledCount)
	assert.Equal(t, event, handler.LastEvent)

	expectedErr := errors.New("handler error")
	handler.HandlerError = expectedErr
	err = handler.HandleEvent(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 2, handler.HandledCount)
}

func TestEventHandlerFunc(t *testing.T) {
	var got *StatusChangedEvent
	h := EventHandlerFunc(func(ctx context.Context, event *StatusChangedEvent) error {
		got = event
		return nil
	})

	event := NewStatusChangedEvent("job-2", "failed", "boom")
	assert.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Same(t, event, got)
}
