// Package testing provides a component testing harness for render-kit.
//
// # Quick Start
//
// Create a tester, mount an element, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := rktest.NewTesterWithT(t)
//	    tester.Mount(core.H(Counter, core.Props{"initial": 1}))
//
//	    // Simulate input
//	    tester.Tap(rktest.ByText("1"))
//
//	    // Assert state
//	    if !tester.Find(rktest.ByText("2")).Exists() {
//	        t.Error("expected '2'")
//	    }
//	}
//
// Trees are mounted into a headless backend (see package headless). Assets
// are served by a [headless.MapLoader] available through Loader; use Hold
// and Release to observe components while a load is in flight.
//
// # Snapshot Testing
//
// Capture and compare component tree and scene snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/counter.snap.yaml")
//
// Update snapshots with:
//
//	RENDERKIT_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Animation Testing
//
// Control time for deterministic animation tests:
//
//	tester.Advance(100 * time.Millisecond)
//
// PumpAndSettle advances the clock frame by frame until no work is
// dispatched, loading or animating.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import rktest "github.com/go-drift/renderkit/pkg/testing"
package testing
