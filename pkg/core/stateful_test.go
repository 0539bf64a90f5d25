package core

import (
	"errors"
	"testing"

	"github.com/go-drift/stateview/pkg/dom"
)

type viewState struct {
	state string
	data  string
}

type listenerCall struct {
	state viewState
	el    dom.Element
}

// recordingListener returns a listener that appends every call to calls.
func recordingListener(calls *[]listenerCall) Listener[viewState] {
	return func(s viewState, el dom.Element) {
		*calls = append(*calls, listenerCall{state: s, el: el})
	}
}

func testDocument(t *testing.T) dom.Node {
	t.Helper()
	doc, err := dom.ParseString(`<html><body><main id="app"></main><ul id="list"></ul></body></html>`)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	return doc
}

func byID(t *testing.T, doc dom.Node, id string) dom.Node {
	t.Helper()
	n, ok := doc.ElementByID(id)
	if !ok {
		t.Fatalf("element #%s not found", id)
	}
	return n
}

func TestStatefulElement_ConstructionNotifiesOnce(t *testing.T) {
	main := byID(t, testDocument(t), "app")
	var calls []listenerCall

	initial := viewState{state: "loading"}
	NewStatefulElement(main, initial, recordingListener(&calls), WithRegistry(NewRegistry()))

	if len(calls) != 1 {
		t.Fatalf("listener called %d times, want 1", len(calls))
	}
	if calls[0].state != initial {
		t.Errorf("listener state = %+v, want %+v", calls[0].state, initial)
	}
	if calls[0].el.Identity() != main.Identity() {
		t.Error("listener received a different element")
	}
}

func TestStatefulElement_SetStateNotifiesPerWrite(t *testing.T) {
	main := byID(t, testDocument(t), "app")
	var calls []listenerCall
	se := NewStatefulElement(main, viewState{state: "loading"}, recordingListener(&calls), WithRegistry(NewRegistry()))

	writes := []viewState{
		{state: "error"},
		{state: "error"}, // identical values are not coalesced
		{state: "load-success", data: "{}"},
	}
	for _, w := range writes {
		se.SetState(w)
		if got := se.State(); got != w {
			t.Errorf("State() = %+v after SetState(%+v)", got, w)
		}
	}

	if len(calls) != 1+len(writes) {
		t.Fatalf("listener called %d times, want %d", len(calls), 1+len(writes))
	}
	for i, w := range writes {
		if calls[i+1].state != w {
			t.Errorf("call %d state = %+v, want %+v", i+1, calls[i+1].state, w)
		}
	}
}

func TestStatefulElement_LoadingThenError(t *testing.T) {
	main := byID(t, testDocument(t), "app")
	var calls []listenerCall
	se := NewStatefulElement(main, viewState{state: "loading"}, recordingListener(&calls), WithRegistry(NewRegistry()))

	if len(calls) != 1 || calls[0].state.state != "loading" {
		t.Fatalf("after construction calls = %+v", calls)
	}

	se.SetState(viewState{state: "error"})
	if len(calls) != 2 || calls[1].state.state != "error" {
		t.Fatalf("after SetState calls = %+v", calls)
	}
	if se.State().state != "error" {
		t.Errorf("State() = %+v, want error", se.State())
	}
}

func TestStatefulElement_Update(t *testing.T) {
	main := byID(t, testDocument(t), "app")
	var last int
	se := NewStatefulElement(main, 1, func(n int, _ dom.Element) { last = n }, WithRegistry(NewRegistry()))

	se.Update(func(n int) int { return n * 10 })
	if se.State() != 10 || last != 10 {
		t.Errorf("State() = %d, listener saw %d, want 10", se.State(), last)
	}
}

func TestStatefulElement_ReentrantWrite(t *testing.T) {
	main := byID(t, testDocument(t), "app")
	var (
		order []string
		se    *StatefulElement[viewState]
	)
	listener := func(s viewState, el dom.Element) {
		order = append(order, "enter "+s.state)
		if s.state == "load-success" && s.data == "bad" {
			// The wrapper is recovered from the raw element, as an event
			// handler would.
			wrapped, ok := LookupState[viewState](se.registry, el)
			if !ok {
				t.Fatal("back-reference missing inside listener")
			}
			wrapped.SetState(viewState{state: "error"})
		}
		order = append(order, "exit "+s.state)
	}
	se = NewStatefulElement(main, viewState{state: "loading"}, listener, WithRegistry(NewRegistry()))

	se.SetState(viewState{state: "load-success", data: "bad"})

	want := []string{
		"enter loading", "exit loading",
		"enter load-success",
		"enter error", "exit error",
		"exit load-success",
	}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if se.State().state != "error" {
		t.Errorf("final state = %q, want error", se.State().state)
	}
}

func TestStatefulElement_ListenerPanicPropagates(t *testing.T) {
	main := byID(t, testDocument(t), "app")
	boom := errors.New("boom")
	se := NewStatefulElement(main, 0, func(n int, _ dom.Element) {
		if n == 1 {
			panic(boom)
		}
	}, WithRegistry(NewRegistry()))

	defer func() {
		if r := recover(); r != boom {
			t.Errorf("recovered %v, want %v", r, boom)
		}
		if se.State() != 1 {
			t.Errorf("state should be written before the listener runs, got %d", se.State())
		}
	}()
	se.SetState(1)
	t.Fatal("SetState should have panicked")
}

func TestNewStatefulElement_NilArguments(t *testing.T) {
	main := byID(t, testDocument(t), "app")

	tests := []struct {
		name string
		fn   func()
		want error
	}{
		{"nil listener", func() { NewStatefulElement[int](main, 0, nil) }, ErrNilListener},
		{"nil element", func() { NewStatefulElement(nil, 0, func(int, dom.Element) {}) }, ErrNilElement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != tt.want {
					t.Errorf("recovered %v, want %v", r, tt.want)
				}
			}()
			tt.fn()
		})
	}
}
