package core

import (
	"testing"

	"github.com/go-drift/stateview/pkg/dom"
)

func TestRegistry_BackReference(t *testing.T) {
	doc := testDocument(t)
	reg := NewRegistry()
	se := NewStatefulElement(byID(t, doc, "app"), "idle", func(string, dom.Element) {}, WithRegistry(reg))

	// A fresh handle to the same element resolves to the same wrapper.
	got, ok := LookupState[string](reg, byID(t, doc, "app"))
	if !ok || got != se {
		t.Fatalf("LookupState = %v, %v; want the constructing wrapper", got, ok)
	}

	if _, ok := LookupState[int](reg, byID(t, doc, "app")); ok {
		t.Error("LookupState with the wrong state type should fail")
	}
	if _, ok := reg.Lookup(byID(t, doc, "list")); ok {
		t.Error("unwrapped element should have no back-reference")
	}
	if _, ok := reg.Lookup(nil); ok {
		t.Error("nil element should have no back-reference")
	}
}

func TestRegistry_SecondWrapOverwrites(t *testing.T) {
	doc := testDocument(t)
	reg := NewRegistry()
	main := byID(t, doc, "app")
	noop := func(string, dom.Element) {}

	first := NewStatefulElement(main, "first", noop, WithRegistry(reg))
	second := NewStatefulElement(main, "second", noop, WithRegistry(reg))

	got, ok := LookupState[string](reg, main)
	if !ok || got != second {
		t.Fatalf("back-reference should resolve to the last wrapper")
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}

	// Releasing the superseded wrapper leaves the current one in place.
	first.Release()
	if got, _ := LookupState[string](reg, main); got != second {
		t.Error("stale Release removed the current back-reference")
	}

	second.Release()
	if _, ok := reg.Lookup(main); ok {
		t.Error("Release should remove the back-reference")
	}
}

func TestRegistry_Release(t *testing.T) {
	doc := testDocument(t)
	reg := NewRegistry()
	main := byID(t, doc, "app")
	NewStatefulElement(main, 0, func(int, dom.Element) {}, WithRegistry(reg))

	reg.Release(main)
	reg.Release(nil)
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after Release, want 0", reg.Len())
	}
}

func TestStateOf_DefaultRegistry(t *testing.T) {
	main := byID(t, testDocument(t), "app")
	se := NewStatefulElement(main, 3.5, func(float64, dom.Element) {})
	defer se.Release()

	got, ok := StateOf[float64](main)
	if !ok || got != se {
		t.Fatal("StateOf should find wrappers installed in DefaultRegistry")
	}
}
