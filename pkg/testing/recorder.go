package testing

import (
	"github.com/go-drift/stateview/pkg/core"
	"github.com/go-drift/stateview/pkg/dom"
)

// Call is one recorded listener invocation.
type Call[S any] struct {
	State   S
	Element dom.Element
}

// Recorder records listener invocations.
type Recorder[S any] struct {
	calls []Call[S]
	hook  func(S, dom.Element)
}

// NewRecorder returns an empty recorder.
func NewRecorder[S any]() *Recorder[S] {
	return &Recorder[S]{}
}

// OnCall sets a function run after each recorded call, e.g. to issue a
// nested state write.
func (r *Recorder[S]) OnCall(fn func(state S, el dom.Element)) *Recorder[S] {
	r.hook = fn
	return r
}

// Listener returns a core.Listener that records into r.
func (r *Recorder[S]) Listener() core.Listener[S] {
	return func(state S, el dom.Element) {
		r.calls = append(r.calls, Call[S]{State: state, Element: el})
		if r.hook != nil {
			r.hook(state, el)
		}
	}
}

// Calls returns the recorded calls, oldest first.
func (r *Recorder[S]) Calls() []Call[S] {
	return r.calls
}

// Count returns the number of recorded calls.
func (r *Recorder[S]) Count() int {
	return len(r.calls)
}

// Last returns the most recent call. Panics if nothing was recorded.
func (r *Recorder[S]) Last() Call[S] {
	if len(r.calls) == 0 {
		panic("Recorder has no calls")
	}
	return r.calls[len(r.calls)-1]
}

// States returns the recorded states, oldest first.
func (r *Recorder[S]) States() []S {
	out := make([]S, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.State
	}
	return out
}

// Reset discards the recorded calls.
func (r *Recorder[S]) Reset() {
	r.calls = nil
}
