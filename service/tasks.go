package service

import (
	"context"
	"sync"
)

// Task is a handle to one background operation.
type Task struct {
	Name string
	done chan struct{}

	mu     sync.Mutex
	result any
	err    error
}

// Wait blocks until the task finishes or the context is done. The task keeps
// running after a context expiry; only its completion resolves the result.
func (t *Task) Wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done reports completion without blocking.
func (t *Task) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// TaskSet tracks background operations so shutdown can drain them.
type TaskSet struct {
	wg     sync.WaitGroup
	cancel context.CancelFunc
	ctx    context.Context
}

// NewTaskSet creates an empty task set.
func NewTaskSet() *TaskSet {
	ctx, cancel := context.WithCancel(context.Background())
	return &TaskSet{ctx: ctx, cancel: cancel}
}

// Go launches fn in the background. The task context is cancelled on
// Shutdown, detaching task lifetime from the caller's request context.
func (ts *TaskSet) Go(name string, fn func(ctx context.Context) (any, error)) *Task {
	task := &Task{Name: name, done: make(chan struct{})}
	ts.wg.Add(1)
	go func() {
		defer ts.wg.Done()
		result, err := fn(ts.ctx)
		task.mu.Lock()
		task.result, task.err = result, err
		task.mu.Unlock()
		close(task.done)
	}()
	return task
}

// Shutdown cancels running tasks and waits for them to return.
func (ts *TaskSet) Shutdown() {
	ts.cancel()
	ts.wg.Wait()
}
