package model

import (
	"context"
	"sync"
)

// Dispatcher hands a task to the UI context. Dispatch returns false if the
// UI context has stopped and the task will never run.
type Dispatcher interface {
	Dispatch(task func()) bool
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(task func()) bool

// Dispatch calls f(task).
func (f DispatchFunc) Dispatch(task func()) bool { return f(task) }

// Loop is a serial task queue standing in for a UI event loop. Tasks posted
// with Dispatch run one at a time, in order, on the goroutine calling Run.
type Loop struct {
	tasks    chan func()
	stop     chan struct{}
	stopOnce sync.Once
}

// NewLoop returns a Loop whose queue holds up to buffer pending tasks before
// Dispatch blocks.
func NewLoop(buffer int) *Loop {
	if buffer < 0 {
		buffer = 0
	}
	return &Loop{tasks: make(chan func(), buffer), stop: make(chan struct{})}
}

// Dispatch queues task. It blocks while the queue is full and returns false
// once the loop has stopped.
func (l *Loop) Dispatch(task func()) bool {
	select {
	case <-l.stop:
		return false
	default:
	}
	select {
	case l.tasks <- task:
		return true
	case <-l.stop:
		return false
	}
}

// Run executes queued tasks until ctx is done. Tasks still queued at that
// point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.stop) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-l.tasks:
			task()
		}
	}
}
