package testing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/go-drift/renderkit/pkg/core"
	rkerrors "github.com/go-drift/renderkit/pkg/errors"
	"github.com/go-drift/renderkit/pkg/headless"
	"github.com/go-drift/renderkit/pkg/render"
)

// FrameDuration is the fake time that passes per frame in PumpAndSettle.
const FrameDuration = 16 * time.Millisecond

// mountTimeout bounds how long Mount waits, in real time, for the initial
// resources.
const mountTimeout = 5 * time.Second

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: tree did not settle")

// Tester mounts element trees into a headless backend and drives them
// deterministically. Time comes from a FakeClock; asset loads go through a
// MapLoader. All methods must be called from the test goroutine.
type Tester struct {
	backend   *headless.Backend
	loader    *headless.MapLoader
	clock     *FakeClock
	stage     *headless.Node
	engine    render.Engine
	resolvers map[core.Tag]*core.ComponentType
	root      *render.Root
	logger    *slog.Logger
}

// NewTester creates a tester with an empty stage. Call Cleanup when done,
// or use NewTesterWithT instead.
func NewTester() *Tester {
	b := headless.New()
	loader := headless.NewMapLoader()
	return &Tester{
		backend: b,
		loader:  loader,
		clock:   NewFakeClock(),
		stage:   b.NewStage(),
		engine: render.Engine{
			Drawables: b,
			Mutator:   b,
			Events:    b,
			Loader:    loader,
		},
		resolvers: make(map[core.Tag]*core.ComponentType),
		logger:    rkerrors.Logger(),
	}
}

// NewTesterWithT creates a tester that unmounts itself via t.Cleanup.
func NewTesterWithT(t testing.TB) *Tester {
	tester := NewTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the current tree, if any.
func (t *Tester) Cleanup() {
	if t.root != nil && !t.root.Closed() {
		_ = t.root.Unmount()
	}
	t.root = nil
}

// Register adds tag resolvers. Must be called before Mount.
func (t *Tester) Register(resolvers map[core.Tag]*core.ComponentType) {
	for tag, ctype := range resolvers {
		t.resolvers[tag] = ctype
	}
}

// SetResources sets the initial resource set preloaded by Mount.
func (t *Tester) SetResources(urls ...string) {
	t.engine.Resources = urls
}

// SetValues sets the metadata copied into the root's Meta.
func (t *Tester) SetValues(values map[string]any) {
	t.engine.Values = values
}

// SetLogger sets the logger handed to the root.
func (t *Tester) SetLogger(logger *slog.Logger) {
	t.logger = logger
}

// Backend returns the headless backend.
func (t *Tester) Backend() *headless.Backend { return t.backend }

// Loader returns the loader serving asset requests.
func (t *Tester) Loader() *headless.MapLoader { return t.loader }

// Clock returns the fake clock driving animations.
func (t *Tester) Clock() *FakeClock { return t.clock }

// Stage returns the host container the tree is mounted into.
func (t *Tester) Stage() *headless.Node { return t.stage }

// Root returns the mounted root, or nil.
func (t *Tester) Root() *render.Root { return t.root }

// Component returns the top-level component, or nil.
func (t *Tester) Component() core.Component {
	if t.root == nil {
		return nil
	}
	return t.root.Component()
}

// Mount unmounts any previous tree and mounts el. It returns as soon as
// the tree is mounted; loads the mount started keep running and are
// delivered by Pump.
func (t *Tester) Mount(el *core.Element) error {
	t.Cleanup()
	t.stage = t.backend.NewStage()

	engine := t.engine
	engine.Resolvers = t.resolvers
	mount := render.Render(engine,
		render.WithClock(t.clock),
		render.WithLogger(t.logger),
	)
	ctx, cancel := context.WithTimeout(context.Background(), mountTimeout)
	defer cancel()
	root, err := mount(ctx, el, t.stage).Mounted(ctx)
	if err != nil {
		return err
	}
	t.root = root
	cache := root.Meta().Assets
	t.backend.SetResources(func(url string) (any, bool) { return cache.Get(url) })
	return nil
}

// Update reconciles the mounted tree against el.
func (t *Tester) Update(el *core.Element) error {
	if t.root == nil {
		return errors.New("Update: nothing mounted")
	}
	return t.root.Update(el)
}

// Unmount tears down the mounted tree.
func (t *Tester) Unmount() error {
	if t.root == nil {
		return errors.New("Unmount: nothing mounted")
	}
	return t.root.Unmount()
}

// Pump runs one frame: dispatched work first, then animations at the
// clock's current time.
func (t *Tester) Pump() error {
	if t.root == nil {
		return nil
	}
	return t.root.Frame()
}

// Advance moves the clock forward by d and pumps one frame.
func (t *Tester) Advance(d time.Duration) error {
	t.clock.Advance(d)
	return t.Pump()
}

// PumpAndSettle pumps frames, advancing the clock by FrameDuration each
// time, until nothing is dispatched, loading or animating. Returns
// ErrSettleTimeout if timeout of fake time passes first.
func (t *Tester) PumpAndSettle(timeout time.Duration) error {
	if t.root == nil {
		return nil
	}
	meta := t.root.Meta()
	for elapsed := time.Duration(0); ; elapsed += FrameDuration {
		if err := t.Pump(); err != nil {
			return err
		}
		if t.root.Idle() {
			return nil
		}
		if elapsed >= timeout {
			return ErrSettleTimeout
		}
		if !meta.Timeline.HasActive() && meta.Scheduler.Pending() == 0 {
			// Only background loads remain.
			select {
			case <-meta.Scheduler.Wake():
			case <-time.After(10 * time.Millisecond):
			}
		}
		t.clock.Advance(FrameDuration)
	}
}

// PumpUntil pumps until cond holds, waiting up to timeout of real time for
// work dispatched from other goroutines.
func (t *Tester) PumpUntil(cond func() bool, timeout time.Duration) error {
	if t.root == nil {
		return errors.New("PumpUntil: nothing mounted")
	}
	deadline := time.After(timeout)
	for {
		if err := t.Pump(); err != nil {
			return err
		}
		if cond() {
			return nil
		}
		select {
		case <-t.root.Meta().Scheduler.Wake():
		case <-deadline:
			return fmt.Errorf("PumpUntil: condition not met after %v", timeout)
		}
	}
}

// Find evaluates a finder against the mounted component tree.
func (t *Tester) Find(finder Finder) FinderResult {
	c := t.Component()
	if c == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		components: finder.Evaluate(c),
		finder:     finder,
	}
}

// Texts returns the text of every text node on the stage, in scene order.
func (t *Tester) Texts() []string {
	var out []string
	for _, n := range t.stage.Find(func(n *headless.Node) bool { return n.Tag == headless.TagText }) {
		out = append(out, n.Text)
	}
	return out
}

// Dump renders the stage as indented text.
func (t *Tester) Dump() string {
	return headless.Dump(t.stage)
}
