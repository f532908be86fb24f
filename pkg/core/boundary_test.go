package core

import (
	stderrors "errors"
	"testing"

	"github.com/go-drift/renderkit/pkg/errors"
)

var errBoom = stderrors.New("boom")

type boundary struct {
	StateBase
	caught []error
}

func (b *boundary) DidCatch(err error) error {
	b.caught = append(b.caught, err)
	if record, ok := b.Props()["onCatch"].(func(string, error)); ok {
		record(b.Props().String("name"), err)
	}
	if b.Props()["rethrow"] == true {
		return err
	}
	b.SetState(State{"failed": true})
	return nil
}

func (b *boundary) Render() Result {
	if b.State()["failed"] == true {
		return Ready(H(tagLabel, Props{"name": "fallback"}))
	}
	return Ready(Frag(b.Children()...))
}

var boundaryType = Define("Boundary", func() Instance { return &boundary{} })

type thrower struct{ StateBase }

func (t *thrower) Render() Result {
	if t.Props()["panic"] == true {
		panic("render exploded")
	}
	return Fail(errBoom)
}

var throwerType = Define("Thrower", func() Instance { return &thrower{} })

func boundaryNamed(h *harness, name string) *boundary {
	return h.find(name).(*Custom).Instance().(*boundary)
}

func TestBoundary_CatchesFromTwoLevelsDown(t *testing.T) {
	h := newHarness(t)
	h.mustMount(H(boundaryType, Props{"name": "outer"},
		H(trackerType, nil,
			H(throwerType, nil),
		),
	))

	b := boundaryNamed(h, "outer")
	if len(b.caught) != 1 {
		t.Fatalf("caught %d errors, want 1", len(b.caught))
	}
	var rerr *errors.RenderError
	if !stderrors.As(b.caught[0], &rerr) {
		t.Fatalf("caught %T, want *RenderError", b.caught[0])
	}
	if rerr.Component != "Thrower" || rerr.Phase != errors.PhaseRender || !stderrors.Is(rerr, errBoom) {
		t.Errorf("render error = %+v", rerr)
	}
	if got := h.scene(); got != "label[fallback]" {
		t.Errorf("scene = %q, want fallback", got)
	}
}

func TestBoundary_Rethrow(t *testing.T) {
	// The outer fallback replaces the inner boundary, so catches are
	// recorded as they happen rather than looked up afterwards.
	caught := map[string][]error{}
	record := func(name string, err error) { caught[name] = append(caught[name], err) }

	h := newHarness(t)
	h.mustMount(H(boundaryType, Props{"name": "outer", "onCatch": record},
		H(boundaryType, Props{"name": "inner", "rethrow": true, "onCatch": record},
			H(throwerType, Props{"panic": true}),
		),
	))

	if len(caught["inner"]) != 1 || len(caught["outer"]) != 1 {
		t.Fatalf("inner caught %d, outer caught %d", len(caught["inner"]), len(caught["outer"]))
	}
	var rerr *errors.RenderError
	if !stderrors.As(caught["outer"][0], &rerr) || rerr.Recovered != "render exploded" {
		t.Errorf("outer caught %v", caught["outer"][0])
	}
	if got := h.scene(); got != "label[fallback]" {
		t.Errorf("scene = %q, want outer fallback", got)
	}
}

func TestBoundary_NoneIsFatal(t *testing.T) {
	h := newHarness(t)
	err := h.mount(H(trackerType, nil, H(throwerType, nil)))
	var rerr *errors.RenderError
	if !stderrors.As(err, &rerr) {
		t.Fatalf("mount err = %v, want RenderError", err)
	}
	if errors.KindOf(err) != errors.KindRender {
		t.Errorf("kind = %v", errors.KindOf(err))
	}
}

func TestBoundary_EventHandlerError(t *testing.T) {
	h := newHarness(t)
	h.mustMount(H(boundaryType, Props{"name": "outer"},
		H(tagLabel, Props{"name": "btn", "onClick": func() error { return errBoom }}),
	))

	if err := Emit(h.find("btn"), "click", nil); err != nil {
		t.Fatalf("Emit returned %v, want nil (caught)", err)
	}
	b := boundaryNamed(h, "outer")
	var rerr *errors.RenderError
	if len(b.caught) != 1 || !stderrors.As(b.caught[0], &rerr) || rerr.Phase != errors.PhaseEvent {
		t.Fatalf("caught = %v", b.caught)
	}
	if got := h.scene(); got != "label[fallback]" {
		t.Errorf("scene = %q", got)
	}
}

func TestBoundary_UnhandledEventError(t *testing.T) {
	h := newHarness(t)
	h.mustMount(H(tagLabel, Props{"name": "btn", "onClick": func(*Event) { panic("nope") }}))

	err := Emit(h.top, "click", nil)
	var rerr *errors.RenderError
	if !stderrors.As(err, &rerr) || rerr.Recovered != "nope" {
		t.Fatalf("Emit err = %v", err)
	}
}

type thrown struct{ StateBase }

func (t *thrown) Render() Result { return Ready(nil) }

func TestThrow_RoutesToBoundary(t *testing.T) {
	h := newHarness(t)
	h.mustMount(H(boundaryType, Props{"name": "outer"}, H(thrownType, Props{"name": "src"})))

	h.find("src").(*Custom).Instance().(*thrown).Throw(errBoom)
	b := boundaryNamed(h, "outer")
	if len(b.caught) != 1 || !stderrors.Is(b.caught[0], errBoom) {
		t.Fatalf("caught = %v", b.caught)
	}
	if len(h.fatal) != 0 {
		t.Errorf("fatal = %v", h.fatal)
	}
}

func TestThrow_UnhandledIsFatal(t *testing.T) {
	h := newHarness(t)
	h.mustMount(H(thrownType, nil))
	h.top.(*Custom).Instance().(*thrown).Throw(errBoom)
	if len(h.fatal) != 1 || !stderrors.Is(h.fatal[0], errBoom) {
		t.Fatalf("fatal = %v", h.fatal)
	}
}

var thrownType = Define("Thrown", func() Instance { return &thrown{} })

type suspender struct {
	StateBase
	pending []*Pending
}

func (s *suspender) CatchPending(p *Pending) { s.pending = append(s.pending, p) }
func (s *suspender) Render() Result          { return Ready(Frag(s.Children()...)) }

var suspenderType = Define("Suspender", func() Instance { return &suspender{} })

type waiter struct{ StateBase }

func (w *waiter) Render() Result {
	if p, _ := w.Props()["pending"].(*Pending); p != nil && !p.Settled() {
		return Suspend(p)
	}
	return Ready(H(tagLabel, Props{"name": "ready"}))
}

var waiterType = Define("Waiter", func() Instance { return &waiter{} })

func TestSuspend_NearestCatcher(t *testing.T) {
	h := newHarness(t)
	p := NewPending()
	h.mustMount(H(suspenderType, Props{"name": "s"}, H(waiterType, Props{"pending": p})))

	s := h.find("s").(*Custom).Instance().(*suspender)
	if len(s.pending) != 1 || s.pending[0] != p {
		t.Fatalf("pending = %v", s.pending)
	}
	if got := h.scene(); got != "" {
		t.Errorf("suspended subtree rendered %q", got)
	}
}

func TestSuspend_WithoutCatcher(t *testing.T) {
	h := newHarness(t)
	err := h.mount(H(waiterType, Props{"pending": NewPending()}))
	if !stderrors.Is(err, errors.ErrNoSuspense) {
		t.Fatalf("err = %v, want ErrNoSuspense", err)
	}
}
