package dispatch

import (
	"context"
	"errors"
	"sync"

	sverrors "github.com/go-drift/stateview/pkg/errors"
)

// ErrClosed is returned when a callback is handed to a closed Loop.
var ErrClosed = errors.New("dispatch: loop closed")

// Loop is a queue of callbacks drained by one goroutine.
//
// A callback that panics is recovered and reported through the errors
// package; the loop keeps running.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoop returns a loop whose queue holds size pending callbacks before
// Post blocks. A size below 1 is treated as 1.
func NewLoop(size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and returns false once
// the loop is closed.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Dispatch is Post with the signature RegisterDispatch expects.
func (l *Loop) Dispatch(fn func()) bool {
	return l.Post(fn)
}

// Call runs fn on the loop and waits for it to return. A panic in fn is
// reported and returned as a KindPanic error. Call must not be used from the
// loop's own goroutine.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	var err error
	if !l.Post(func() {
		defer close(finished)
		err = sverrors.Guard("dispatch.Loop.Call", fn)
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

// Run drains the queue until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.queue:
			l.run(fn)
		}
	}
}

// RunPending runs every callback queued so far, including callbacks queued
// by those callbacks, on the calling goroutine. It returns the number run.
func (l *Loop) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-l.queue:
			l.run(fn)
			n++
		default:
			return n
		}
	}
}

// Close stops the loop. Pending callbacks are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

func (l *Loop) run(fn func()) {
	_ = sverrors.Guard("dispatch.Loop", fn)
}
