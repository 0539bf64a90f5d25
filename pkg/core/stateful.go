package core

import (
	"errors"

	"github.com/go-drift/stateview/pkg/dom"
)

var (
	// ErrNilListener is the panic value when a StatefulElement is constructed
	// without a listener.
	ErrNilListener = errors.New("core: nil state listener")
	// ErrNilElement is the panic value when a StatefulElement is constructed
	// without an element.
	ErrNilElement = errors.New("core: nil element")
)

// Listener renders state onto el. It is called synchronously on every state
// write and must not retain el beyond what the element's owner allows.
type Listener[S any] func(state S, el dom.Element)

// Stateful is the type-erased view of a StatefulElement held by a Registry.
type Stateful interface {
	Element() dom.Element
	StateValue() any
}

// StatefulElement wraps an element with a state value and a listener.
//
// StatefulElement is NOT thread-safe. It must only be used from the UI thread.
// To write state from a background goroutine, use dispatch.Dispatch.
type StatefulElement[S any] struct {
	element  dom.Element
	state    S
	listener Listener[S]
	registry *Registry
}

// NewStatefulElement wraps el, installs the back-reference in the registry
// (DefaultRegistry unless WithRegistry is given) and then calls
// listener(initial, el) once.
//
// It panics with ErrNilElement or ErrNilListener when either is missing.
func NewStatefulElement[S any](el dom.Element, initial S, listener Listener[S], opts ...Option) *StatefulElement[S] {
	if el == nil {
		panic(ErrNilElement)
	}
	if listener == nil {
		panic(ErrNilListener)
	}
	o := buildOptions(opts)
	e := &StatefulElement[S]{
		element:  el,
		state:    initial,
		listener: listener,
		registry: o.registry,
	}
	e.registry.Register(el, e)
	e.report()
	return e
}

// Element returns the wrapped element.
func (e *StatefulElement[S]) Element() dom.Element {
	return e.element
}

// State returns the current state.
func (e *StatefulElement[S]) State() S {
	return e.state
}

// StateValue returns the current state as any.
func (e *StatefulElement[S]) StateValue() any {
	return e.state
}

// SetState replaces the state and calls the listener before returning.
// Every call notifies, including writes of an identical value.
func (e *StatefulElement[S]) SetState(state S) {
	e.state = state
	e.report()
}

// Update replaces the state with fn(current) and calls the listener.
func (e *StatefulElement[S]) Update(fn func(S) S) {
	e.SetState(fn(e.state))
}

// Release removes the back-reference from the registry if it still points at
// e. The element itself is left as it is.
func (e *StatefulElement[S]) Release() {
	e.registry.releaseIf(e.element, e)
}

func (e *StatefulElement[S]) report() {
	e.listener(e.state, e.element)
}
