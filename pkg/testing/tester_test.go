package testing

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/errors"
	"github.com/go-drift/renderkit/pkg/headless"
	"github.com/go-drift/renderkit/pkg/testing/internal/testbed"
)

func TestNewTester_Defaults(t *testing.T) {
	tester := NewTesterWithT(t)

	if tester.Clock() == nil {
		t.Fatal("expected fake clock to be set")
	}
	if tester.Component() != nil {
		t.Error("expected no component before Mount")
	}
	if err := tester.Pump(); err != nil {
		t.Errorf("Pump before Mount = %v", err)
	}
}

func TestMount_MountsTree(t *testing.T) {
	tester := NewTesterWithT(t)

	if err := tester.Mount(core.H(headless.TagText, core.Props{"text": "hello"})); err != nil {
		t.Fatal(err)
	}
	if tester.Root() == nil {
		t.Fatal("expected root after Mount")
	}
	if got := tester.Texts(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("Texts() = %v", got)
	}
}

func TestMount_Remount(t *testing.T) {
	tester := NewTesterWithT(t)

	tester.Mount(core.H(headless.TagText, core.Props{"text": "first"}))
	first := tester.Root()

	tester.Mount(core.H(headless.TagText, core.Props{"text": "second"}))
	if tester.Root() == first {
		t.Error("expected new root after remount")
	}
	if !first.Closed() {
		t.Error("previous root still open")
	}
	if got := tester.Texts(); len(got) != 1 || got[0] != "second" {
		t.Errorf("Texts() = %v", got)
	}
}

func TestMount_Error(t *testing.T) {
	tester := NewTesterWithT(t)
	err := tester.Mount(core.H(core.Tag("missing"), nil))
	if !stderrors.Is(err, errors.ErrNoResolver) {
		t.Errorf("Mount = %v, want ErrNoResolver", err)
	}
}

func TestTap_UpdatesState(t *testing.T) {
	tester := NewTesterWithT(t)
	var taps []int
	tester.Mount(core.H(testbed.Counter, core.Props{
		"initial": 1,
		"onTap":   func(n int) { taps = append(taps, n) },
	}))

	if err := tester.Tap(ByText("1")); err != nil {
		t.Fatal(err)
	}
	if err := tester.Tap(ByText("2")); err != nil {
		t.Fatal(err)
	}
	if !tester.Find(ByText("3")).Exists() {
		t.Errorf("expected text 3, scene:\n%s", tester.Dump())
	}
	if len(taps) != 2 || taps[1] != 3 {
		t.Errorf("taps = %v", taps)
	}
	if err := tester.Tap(ByText("nope")); err == nil {
		t.Error("expected error tapping a missing component")
	}
}

func TestRegister_Resolvers(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Register(map[core.Tag]*core.ComponentType{"counter": testbed.Counter})

	if err := tester.Mount(core.H(core.Tag("counter"), core.Props{"initial": 7})); err != nil {
		t.Fatal(err)
	}
	if !tester.Find(ByType(testbed.Counter)).Exists() {
		t.Error("counter tag did not resolve to Counter")
	}
}

func TestSetResources_Preloads(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Loader().Set("hero.png", headless.Image{URL: "hero.png", Width: 32, Height: 16})
	tester.SetResources("hero.png")

	if err := tester.Mount(core.H(headless.TagSprite, core.Props{"src": "hero.png"})); err != nil {
		t.Fatal(err)
	}
	size := tester.Backend().Size(tester.Component())
	if size.Width != 32 || size.Height != 16 {
		t.Errorf("sprite size = %+v, want 32x16", size)
	}
}

func TestPumpAndSettle_WaitsForLoads(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Mount(core.H(headless.TagContainer, nil))

	tester.Root().Meta().Assets.AddMany([]string{"late.png"})
	if err := tester.PumpAndSettle(time.Second); err != nil {
		t.Fatal(err)
	}
	if !tester.Root().Meta().Assets.Has("late.png") {
		t.Error("load not complete after settle")
	}
}

func TestPumpAndSettle_Timeout(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Mount(core.H(headless.TagContainer, nil))

	tester.Loader().Hold()
	defer tester.Loader().Release()
	tester.Root().Meta().Assets.AddMany([]string{"stuck.png"})

	if err := tester.PumpAndSettle(100 * time.Millisecond); !stderrors.Is(err, ErrSettleTimeout) {
		t.Errorf("PumpAndSettle = %v, want ErrSettleTimeout", err)
	}
}

func TestPumpUntil(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Mount(core.H(headless.TagContainer, nil))

	done := false
	go tester.Root().Dispatch(func() { done = true })
	if err := tester.PumpUntil(func() bool { return done }, time.Second); err != nil {
		t.Fatal(err)
	}
}

func TestFocus(t *testing.T) {
	tester := NewTesterWithT(t)
	focused := 0
	tester.Mount(core.H(headless.TagContainer, core.Props{"onFocus": func() { focused++ }}))

	if err := tester.Focus(ByTag(headless.TagContainer)); err != nil {
		t.Fatal(err)
	}
	if focused != 1 {
		t.Errorf("focused = %d, want 1", focused)
	}
}

func TestUnmount(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Mount(core.H(testbed.Counter, nil))

	if err := tester.Unmount(); err != nil {
		t.Fatal(err)
	}
	if n := len(tester.Stage().Children()); n != 0 {
		t.Errorf("stage has %d children after Unmount", n)
	}
	if err := tester.Update(core.H(testbed.Counter, nil)); !stderrors.Is(err, errors.ErrClosed) {
		t.Errorf("Update after Unmount = %v, want ErrClosed", err)
	}
}
