package quiz

import (
	"context"
	"time"
)

// Executor runs functions on one sequential execution context.
type Executor interface {
	// Dispatch queues fn to run on the execution context.
	Dispatch(fn func())
	// After queues fn once d has elapsed.
	After(d time.Duration, fn func())
}

// Loop is an Executor backed by a single goroutine.
type Loop struct {
	tasks chan func()
	done  chan struct{}
}

func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Run executes queued functions until ctx is canceled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Done is closed once Run has returned. No queued function runs after that.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Dispatch drops fn if the loop has stopped.
func (l *Loop) Dispatch(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { l.Dispatch(fn) })
}
