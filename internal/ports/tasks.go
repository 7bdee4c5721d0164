package ports

import "context"

// TaskFunc is the body of a background task
type TaskFunc func(ctx context.Context) (any, error)

// Task is a handle to a submitted background task
type Task interface {
	Name() string
	// Cancel aborts the task; its callback is not invoked if it has not fired yet
	Cancel()
	// Wait blocks until the task finished or was cancelled
	Wait() error
}

// TaskRunner runs named single-shot tasks off the caller's goroutine.
// Submitting a name that is already running joins the running task and
// receives its result.
type TaskRunner interface {
	Submit(ctx context.Context, name string, fn TaskFunc, done func(any, error)) Task
}
