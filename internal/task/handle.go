package task

// Handle is the write capability for a single job's status. The TaskRunner
// creates exactly one Handle per job and passes it to the task executing
// that job; there is no other way to obtain one.
type Handle struct {
	id    JobID
	store StatusStore
}

func newHandle(id JobID, store StatusStore) *Handle {
	return &Handle{id: id, store: store}
}

// ID returns the identifier of the job this handle writes to
func (h *Handle) ID() JobID {
	return h.id
}

// SetStatus publishes a new status for the handle's job
func (h *Handle) SetStatus(status JobStatus) {
	h.store.Set(h.id, status)
}
