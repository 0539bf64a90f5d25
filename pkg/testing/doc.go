// Package testing provides test helpers for stateview elements and pages.
//
// # Quick Start
//
// Parse a page, bind state to it, pump the UI loop and assert on the markup:
//
//	func TestCard(t *testing.T) {
//	    tester := svtest.NewTester(t, page)
//	    card := profilecard.NewCard(handles, fetcher,
//	        profilecard.WithRegistry(tester.Registry()),
//	        profilecard.WithClock(tester.Clock()))
//	    card.Generate(ctx, randomuser.GenderAny)
//	    tester.PumpUntil(func() bool { ... }, time.Second)
//
//	    if !tester.Find(svtest.ByClass("load-success")).Exists() {
//	        t.Error("expected the success view")
//	    }
//	}
//
// # Listener Recording
//
// Recorder captures every listener call for exact-count assertions:
//
//	rec := svtest.NewRecorder[string]()
//	el := core.NewStatefulElement(node, "loading", rec.Listener())
//	el.SetState("error")
//	rec.Count() // 2
//
// # Snapshot Testing
//
// Capture and compare rendered markup against golden files:
//
//	snapshot := svtest.CaptureSnapshot(node)
//	snapshot.MatchesFile(t, "testdata/card.snapshot.html")
//
// Update snapshots with:
//
//	STATEVIEW_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import svtest "github.com/go-drift/stateview/pkg/testing"
package testing
