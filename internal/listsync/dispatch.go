package listsync

import (
	"context"
	"sync"
)

// Dispatcher runs functions on the UI context, in the order they were
// dispatched.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface, for example
// glib.IdleAdd or a tea.Program's Send.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) {
	f(fn)
}

// Immediate runs fn on the calling goroutine. The collection serializes
// notifications, including appends made from inside one, so this is enough
// for single-context hosts and tests.
var Immediate Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Queue is an unbounded FIFO drained by a single goroutine calling Run.
// That goroutine becomes the UI context.
type Queue struct {
	mu     sync.Mutex
	fns    []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Dispatch enqueues fn. Functions dispatched after Close are dropped.
func (q *Queue) Dispatch(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.fns = append(q.fns, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Run executes queued functions until ctx is done or the queue is closed.
// After Close it drains whatever was queued before returning nil.
func (q *Queue) Run(ctx context.Context) error {
	for {
		if q.drain() {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		case <-q.done:
			q.drain()
			return nil
		}
	}
}

func (q *Queue) drain() bool {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns) > 0
}

// Close stops accepting work and lets Run return once drained.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Len returns the number of functions waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}
