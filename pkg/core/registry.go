package core

import (
	"sync"

	"github.com/go-drift/stateview/pkg/dom"
)

// Registry maps element identity to the StatefulElement that last wrapped it.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[any]Stateful
}

// DefaultRegistry is used by constructors that are not given WithRegistry.
var DefaultRegistry = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[any]Stateful)}
}

// Register installs s as the back-reference for el, replacing any previous
// wrapper.
func (r *Registry) Register(el dom.Element, s Stateful) {
	key := el.Identity()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = s
}

// Lookup returns the wrapper installed for el.
func (r *Registry) Lookup(el dom.Element) (Stateful, bool) {
	if el == nil {
		return nil, false
	}
	key := el.Identity()
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.entries[key]
	return s, ok
}

// Release forgets the back-reference for el.
func (r *Registry) Release(el dom.Element) {
	if el == nil {
		return
	}
	key := el.Identity()
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

func (r *Registry) releaseIf(el dom.Element, owner Stateful) {
	key := el.Identity()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[key] == owner {
		delete(r.entries, key)
	}
}

// Len returns the number of registered elements.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// LookupState returns the StatefulElement[S] installed for el in r. It
// reports false when el has no wrapper or the wrapper holds another state
// type.
func LookupState[S any](r *Registry, el dom.Element) (*StatefulElement[S], bool) {
	s, ok := r.Lookup(el)
	if !ok {
		return nil, false
	}
	typed, ok := s.(*StatefulElement[S])
	return typed, ok
}

// StateOf is LookupState on DefaultRegistry.
func StateOf[S any](el dom.Element) (*StatefulElement[S], bool) {
	return LookupState[S](DefaultRegistry, el)
}
