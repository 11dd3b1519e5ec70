package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// JobID is the opaque identifier of a submitted job
type JobID string

// NewJobID generates a fresh random job identifier
func NewJobID() JobID {
	return JobID(uuid.NewString())
}

// String returns the identifier as a plain string
func (id JobID) String() string {
	return string(id)
}

// State represents the lifecycle stage of a job
type State string

// Possible job states
const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// JobStatus is the current status of a job. Result is only meaningful for
// completed jobs and Reason only for failed ones.
type JobStatus struct {
	State  State
	Result string
	Reason string
}

// Pending is the initial status of every job
func Pending() JobStatus {
	return JobStatus{State: StatePending}
}

// InProgress marks a job whose task has started working
func InProgress() JobStatus {
	return JobStatus{State: StateInProgress}
}

// Completed marks a job that finished with the given result
func Completed(result string) JobStatus {
	return JobStatus{State: StateCompleted, Result: result}
}

// Failed marks a job that finished with the given failure reason
func Failed(reason string) JobStatus {
	return JobStatus{State: StateFailed, Reason: reason}
}

// IsTerminal reports whether no further transition is allowed
func (s JobStatus) IsTerminal() bool {
	return s.State == StateCompleted || s.State == StateFailed
}

// Detail returns the result for completed jobs, the reason for failed jobs,
// and an empty string otherwise
func (s JobStatus) Detail() string {
	switch s.State {
	case StateCompleted:
		return s.Result
	case StateFailed:
		return s.Reason
	default:
		return ""
	}
}

// TaskFunc is the unit of work executed for a job. It owns the job's Handle
// and is expected to publish a terminal status through it before returning.
type TaskFunc func(ctx context.Context, h *Handle)

// StatusReader provides read-only access to job statuses
type StatusReader interface {
	// Get returns the most recently published status for the job
	Get(id JobID) (JobStatus, bool)
}

// StatusStore is the shared mapping from job identifier to current status
type StatusStore interface {
	StatusReader

	// Set atomically publishes a status for the job. Transitions out of a
	// terminal status are ignored.
	Set(id JobID, status JobStatus)
}

// ErrJobNotFound is returned when a job identifier was never submitted
var ErrJobNotFound = errors.New("job not found")
