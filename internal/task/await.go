package task

import (
	"context"
	"time"
)

// DefaultAwaitInterval is the polling interval used when a non-positive one is given
const DefaultAwaitInterval = 50 * time.Millisecond

// AwaitTerminal polls reader every interval until the job reaches a terminal
// status. It returns ErrJobNotFound for unknown identifiers and the context
// error if ctx ends first. A non-positive interval falls back to
// DefaultAwaitInterval.
func AwaitTerminal(ctx context.Context, reader StatusReader, id JobID, interval time.Duration) (JobStatus, error) {
	if interval <= 0 {
		interval = DefaultAwaitInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, ok := reader.Get(id)
		if !ok {
			return JobStatus{}, ErrJobNotFound
		}
		if status.IsTerminal() {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}
