package widgets_test

import (
	stderrors "errors"
	"slices"
	"testing"
	"time"

	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/errors"
	rktest "github.com/go-drift/renderkit/pkg/testing"
	"github.com/go-drift/renderkit/pkg/widgets"
)

func gated(urls []string, renders *int) *core.Element {
	return widgets.WithAssets{
		URLs:     urls,
		Children: []*core.Element{core.H(echo, core.Props{"text": "content", "renders": renders})},
	}.Element()
}

func TestWithAssets_RendersOnceLoaded(t *testing.T) {
	tester := rktest.NewTesterWithT(t)
	tester.Loader().Hold()
	renders := 0

	if err := tester.Mount(gated([]string{"a.png"}, &renders)); err != nil {
		t.Fatal(err)
	}
	if err := tester.Pump(); err != nil {
		t.Fatal(err)
	}
	if len(tester.Texts()) != 0 || renders != 0 {
		t.Fatalf("rendered before load: texts=%v renders=%d", tester.Texts(), renders)
	}

	tester.Loader().Release()
	if err := tester.PumpAndSettle(time.Second); err != nil {
		t.Fatal(err)
	}
	if got := tester.Texts(); len(got) != 1 || got[0] != "content" {
		t.Errorf("Texts() = %v, want [content]", got)
	}
	if renders != 1 {
		t.Errorf("children rendered %d times, want 1", renders)
	}
}

func TestWithAssets_LoadOutlivesMountCall(t *testing.T) {
	tester := rktest.NewTesterWithT(t)
	tester.Loader().Hold()
	renders := 0

	if err := tester.Mount(gated([]string{"a.png"}, &renders)); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(time.Second)
	for !tester.Loader().Busy() {
		if time.Now().After(deadline) {
			t.Fatal("load never started")
		}
		time.Sleep(time.Millisecond)
	}

	tester.Loader().Release()
	if err := tester.PumpAndSettle(time.Second); err != nil {
		t.Fatalf("PumpAndSettle: %v", err)
	}
	if got := tester.Texts(); len(got) != 1 || got[0] != "content" {
		t.Errorf("Texts() = %v, want [content]", got)
	}
	if !tester.Root().Meta().Assets.Has("a.png") {
		t.Error("a.png not cached")
	}
}

func TestWithAssets_LoadsOnlyNewURLs(t *testing.T) {
	tester := rktest.NewTesterWithT(t)
	renders := 0

	if err := tester.Mount(gated([]string{"a.png"}, &renders)); err != nil {
		t.Fatal(err)
	}
	if err := tester.PumpAndSettle(time.Second); err != nil {
		t.Fatal(err)
	}

	if err := tester.Update(gated([]string{"a.png", "b.png"}, &renders)); err != nil {
		t.Fatal(err)
	}
	if len(tester.Texts()) != 0 {
		t.Errorf("children still shown while b.png is missing: %v", tester.Texts())
	}
	if err := tester.PumpAndSettle(time.Second); err != nil {
		t.Fatal(err)
	}

	calls := tester.Loader().Calls()
	want := [][]string{{"a.png"}, {"b.png"}}
	if !slices.EqualFunc(calls, want, slices.Equal[[]string]) {
		t.Errorf("loader calls = %v, want %v", calls, want)
	}
	if got := tester.Texts(); len(got) != 1 || got[0] != "content" {
		t.Errorf("Texts() = %v, want [content]", got)
	}
}

func TestWithAssets_SameURLsByValue(t *testing.T) {
	tester := rktest.NewTesterWithT(t)
	renders := 0

	tester.Mount(gated([]string{"a.png"}, &renders))
	tester.PumpAndSettle(time.Second)

	// A fresh slice with equal contents is not a change.
	if err := tester.Update(gated([]string{"a.png"}, &renders)); err != nil {
		t.Fatal(err)
	}
	if err := tester.PumpAndSettle(time.Second); err != nil {
		t.Fatal(err)
	}
	if n := len(tester.Loader().Calls()); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
	if len(tester.Texts()) != 1 {
		t.Errorf("children hidden after equal update: %v", tester.Texts())
	}
}

func TestWithAssets_CachedURLsRenderImmediately(t *testing.T) {
	tester := rktest.NewTesterWithT(t)
	tester.SetResources("a.png")
	renders := 0

	if err := tester.Mount(gated([]string{"a.png"}, &renders)); err != nil {
		t.Fatal(err)
	}
	if renders != 1 {
		t.Errorf("renders = %d, want 1 on mount", renders)
	}
	if n := len(tester.Loader().Calls()); n != 1 {
		t.Errorf("loader called %d times, want only the preload", n)
	}
}

func TestWithAssets_FailureReachesBoundary(t *testing.T) {
	tester := rktest.NewTesterWithT(t)
	tester.Loader().Fail("bad.png", stderrors.New("404"))

	var caught error
	tree := widgets.ErrorBoundary{
		OnError:  func(err error) { caught = err },
		Fallback: func(err error) *core.Element { return text("failed") },
		Children: []*core.Element{gated([]string{"bad.png"}, new(int))},
	}.Element()

	if err := tester.Mount(tree); err != nil {
		t.Fatal(err)
	}
	if err := tester.PumpAndSettle(time.Second); err != nil {
		t.Fatal(err)
	}
	if got := tester.Texts(); len(got) != 1 || got[0] != "failed" {
		t.Errorf("Texts() = %v, want [failed]", got)
	}
	var assetErr *errors.AssetError
	if !stderrors.As(caught, &assetErr) || assetErr.URLs[0] != "bad.png" {
		t.Errorf("caught = %v, want AssetError for bad.png", caught)
	}
	if tester.Root().Meta().Assets.Has("bad.png") {
		t.Error("failed URL was cached")
	}
}

func TestWithAssets_UnhandledFailureIsFatal(t *testing.T) {
	tester := rktest.NewTesterWithT(t)
	tester.Loader().Fail("bad.png", stderrors.New("404"))

	if err := tester.Mount(gated([]string{"bad.png"}, new(int))); err != nil {
		t.Fatal(err)
	}
	err := tester.PumpAndSettle(time.Second)
	if errors.KindOf(err) != errors.KindAsset {
		t.Errorf("PumpAndSettle = %v, want an asset error", err)
	}
	if tester.Root().Err() == nil {
		t.Error("root has no fatal error")
	}
}

func TestWithAssets_UnmountDuringLoad(t *testing.T) {
	tester := rktest.NewTesterWithT(t)
	tester.Loader().Hold()
	renders := 0

	if err := tester.Mount(gated([]string{"slow.png"}, &renders)); err != nil {
		t.Fatal(err)
	}
	manager := tester.Root().Meta().Assets
	if manager.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", manager.Subscribers())
	}
	if err := tester.Unmount(); err != nil {
		t.Fatal(err)
	}
	if manager.Subscribers() != 0 {
		t.Errorf("Subscribers() after unmount = %d, want 0", manager.Subscribers())
	}
	tester.Loader().Release()
	if renders != 0 {
		t.Errorf("renders = %d after unmount", renders)
	}
}
