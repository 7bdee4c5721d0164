package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"stylebook/internal/ports"
)

// Manager runs named background tasks. Tasks submitted under a name that
// is already running share one execution and its result. The shared
// execution is cancelled once every task waiting on it has been cancelled.
type Manager struct {
	group singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
	gen     uint64
}

// Ensure Manager implements TaskRunner
var _ ports.TaskRunner = (*Manager)(nil)

type flight struct {
	key    string
	ctx    context.Context
	cancel context.CancelFunc
	refs   int
}

// NewManager creates an idle Manager
func NewManager() *Manager {
	return &Manager{flights: make(map[string]*flight)}
}

// Task is a handle returned by Submit
type Task struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Ensure Task implements ports.Task
var _ ports.Task = (*Task)(nil)

// Name returns the name the task was submitted under
func (t *Task) Name() string { return t.name }

// Cancel aborts the task. The completion callback is not invoked when the
// task is cancelled before it fires.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the task finished or was cancelled
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Submit starts fn under name. done, when non-nil, runs on the task's
// goroutine with the result.
func (m *Manager) Submit(ctx context.Context, name string, fn ports.TaskFunc, done func(any, error)) ports.Task {
	taskCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		name:   name,
		ctx:    taskCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	f, joined := m.acquire(ctx, name)
	logger := zerolog.Ctx(ctx).With().Str("task", name).Logger()
	if joined {
		logger.Debug().Msg("joining running task")
	} else {
		logger.Debug().Msg("task started")
	}

	ch := m.group.DoChan(f.key, func() (any, error) {
		return fn(f.ctx)
	})

	go func() {
		defer close(t.done)
		defer cancel()
		defer m.release(name, f)

		select {
		case res := <-ch:
			if taskCtx.Err() != nil {
				t.err = taskCtx.Err()
				return
			}
			t.err = res.Err
			if res.Err != nil {
				logger.Debug().Err(res.Err).Msg("task failed")
			} else {
				logger.Debug().Msg("task finished")
			}
			if done != nil {
				done(res.Val, res.Err)
			}
		case <-taskCtx.Done():
			t.err = taskCtx.Err()
			logger.Debug().Msg("task cancelled")
		}
	}()

	return t
}

// Running reports whether a task is in flight under name
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.flights[name]
	return ok
}

// CancelAll cancels every in-flight execution
func (m *Manager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, f := range m.flights {
		f.cancel()
		delete(m.flights, name)
	}
}

func (m *Manager) acquire(ctx context.Context, name string) (*flight, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.flights[name]; ok {
		f.refs++
		return f, true
	}

	// The execution outlives any single submitter, so it only keeps the
	// submitter's values (logger) and not its cancellation.
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.gen++
	f := &flight{
		key:    fmt.Sprintf("%s#%d", name, m.gen),
		ctx:    fctx,
		cancel: cancel,
		refs:   1,
	}
	m.flights[name] = f
	return f, false
}

func (m *Manager) release(name string, f *flight) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f.refs--
	if f.refs > 0 {
		return
	}
	f.cancel()
	if m.flights[name] == f {
		delete(m.flights, name)
	}
}
