package bridge

import (
	"context"
	"sync"
)

// Scheduler runs functions on a single logical thread, one at a time, in submission order.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function to [Scheduler].
type SchedulerFunc func(fn func())

func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// Inline runs each function immediately on the caller's goroutine.
//
// Only safe when the caller already serializes delivery, as the in-process pipe and tests do.
var Inline Scheduler = SchedulerFunc(func(fn func()) { fn() })

// Loop is a task queue drained by a single goroutine running [Loop.Run].
//
// Schedule never blocks. Functions scheduled after Run returns are dropped.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
}

// NewLoop creates an idle [Loop].
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Schedule enqueues fn.
func (l *Loop) Schedule(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			l.queue = nil
			l.mu.Unlock()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Do schedules fn and waits for it to finish or for ctx to end.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Schedule(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
