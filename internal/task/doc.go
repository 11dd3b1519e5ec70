// Package task runs long-running jobs in the background and tracks their
// status so that callers can submit work without blocking and poll for the
// outcome later.
//
// A TaskRunner issues job identifiers, records every job as pending, and
// schedules its TaskFunc on a bounded WorkerPool. Each running task receives
// the job's only Handle, through which it publishes its own progress into the
// shared StatusStore. Panics and tasks that forget to report a result are
// contained at the task boundary and surface as failed jobs.
package task
