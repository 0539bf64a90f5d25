package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/stateview/pkg/core"
	"github.com/go-drift/stateview/pkg/dispatch"
	"github.com/go-drift/stateview/pkg/dom"
)

// ErrSettleTimeout is returned when PumpUntil exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpUntil timed out: condition never held")

// Tester owns a parsed document, a UI loop that only runs when pumped, a fake
// clock and a private back-reference registry.
type Tester struct {
	doc      dom.Node
	loop     *dispatch.Loop
	clock    *FakeClock
	registry *core.Registry
}

// NewTester parses markup and registers the tester's loop as the process
// dispatcher. Everything is restored when the test ends.
func NewTester(t testing.TB, markup string) *Tester {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse test document: %v", err)
	}
	tester := &Tester{
		doc:      doc,
		loop:     dispatch.NewLoop(256),
		clock:    NewFakeClock(),
		registry: core.NewRegistry(),
	}
	dispatch.RegisterDispatch(tester.loop.Dispatch)
	t.Cleanup(func() {
		dispatch.RegisterDispatch(nil)
		tester.loop.Close()
	})
	return tester
}

// Document returns the parsed document.
func (t *Tester) Document() dom.Node {
	return t.doc
}

// Loop returns the tester's UI loop.
func (t *Tester) Loop() *dispatch.Loop {
	return t.loop
}

// Clock returns the tester's fake clock.
func (t *Tester) Clock() *FakeClock {
	return t.clock
}

// Registry returns the tester's back-reference registry.
func (t *Tester) Registry() *core.Registry {
	return t.registry
}

// Pump runs every pending UI callback and returns how many ran.
func (t *Tester) Pump() int {
	return t.loop.RunPending()
}

// PumpUntil pumps the loop until cond holds, giving background goroutines
// time to post their results. It returns ErrSettleTimeout if timeout passes
// first.
func (t *Tester) PumpUntil(cond func() bool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		t.Pump()
		if cond() {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrSettleTimeout
		}
		time.Sleep(time.Millisecond)
	}
}

// Advance moves the fake clock forward and pumps callbacks posted by the
// timers that fired.
func (t *Tester) Advance(d time.Duration) {
	t.clock.Advance(d)
	t.Pump()
}

// Find evaluates f against the document.
func (t *Tester) Find(f Finder) FinderResult {
	return Find(t.doc, f)
}

// ByID returns the element with the given id, failing the test if absent.
func (t *Tester) ByID(tb testing.TB, id string) dom.Node {
	tb.Helper()
	n, ok := t.doc.ElementByID(id)
	if !ok {
		tb.Fatalf("no element with id %q", id)
	}
	return n
}
