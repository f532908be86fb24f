package widgets

import (
	"github.com/go-drift/renderkit/pkg/animation"
	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/errors"
)

// TransitionType drives animation players for a set of transition
// definitions.
var TransitionType = core.Define("Transition", func() core.Instance { return &transition{} })

// Transition creates one animation player per enabled definition in
// Transitions. A player starts when its Trigger becomes true. Frames are
// forwarded to OnUpdate and completion to OnDone.
//
// Players are rebuilt only when Transitions changes identity; pass the same
// slice across renders to keep running animations alive.
type Transition struct {
	Transitions []animation.Config
	OnUpdate    func(name string, frame animation.Frame)
	OnDone      func(name string)
	// Props are extra props made visible to Enabled and Trigger predicates.
	Props    core.Props
	Key      any
	Children []*core.Element
}

// Element builds the Transition element.
func (t Transition) Element() *core.Element {
	props := t.Props.With(core.Props{"transitions": t.Transitions})
	if t.OnUpdate != nil {
		props["onUpdate"] = t.OnUpdate
	}
	if t.OnDone != nil {
		props["onDone"] = t.OnDone
	}
	if t.Key != nil {
		props[core.KeyProp] = t.Key
	}
	return core.H(TransitionType, props, t.Children...)
}

type track struct {
	player    *animation.Player
	triggered bool
}

type transition struct {
	core.StateBase
	transitions []animation.Config
	tracks      []*track
}

func (t *transition) Init() error {
	if meta := t.Meta(); meta == nil || meta.Timeline == nil {
		return &errors.ConfigError{Op: "widgets.Transition", Component: "Transition", Err: errors.ErrNoResolver}
	}
	t.build(t.Props())
	t.OnDispose(t.teardown)
	return nil
}

func (t *transition) DidMount() { t.evaluate() }

func (t *transition) WillReceiveProps(next core.Props) {
	if !core.SameRef(next["transitions"], t.Props()["transitions"]) {
		t.teardown()
		t.build(next)
	}
}

func (t *transition) DidUpdate(core.Props, core.State) { t.evaluate() }

func (t *transition) build(props core.Props) {
	t.transitions, _ = props["transitions"].([]animation.Config)
	scope := t.scope(props)
	for _, cfg := range t.transitions {
		if !cfg.IsEnabled(scope) {
			continue
		}
		name := cfg.Name
		player := animation.NewPlayer(t.Meta().Timeline, cfg)
		player.OnUpdate(func(f animation.Frame) { t.emitUpdate(name, f) })
		player.OnDone(func() { t.emitDone(name) })
		t.tracks = append(t.tracks, &track{player: player})
	}
}

// teardown stops and releases every player.
func (t *transition) teardown() {
	for _, tr := range t.tracks {
		tr.player.Stop()
		tr.player.Dispose()
	}
	t.tracks = nil
}

// evaluate starts players whose trigger went from false to true.
func (t *transition) evaluate() {
	scope := t.scope(t.Props())
	for _, tr := range t.tracks {
		triggered := tr.player.Config().IsTriggered(scope)
		if triggered && !tr.triggered {
			tr.player.Start(tr.player.Frame())
		}
		tr.triggered = triggered
	}
}

func (t *transition) scope(props core.Props) animation.Scope {
	return animation.Scope{State: t.State(), Props: props, Component: t.Component()}
}

// Active returns the number of running players.
func (t *transition) Active() int {
	n := 0
	for _, tr := range t.tracks {
		if tr.player.Active() {
			n++
		}
	}
	return n
}

func (t *transition) emitUpdate(name string, f animation.Frame) {
	switch fn := t.Props()["onUpdate"].(type) {
	case func(string, animation.Frame):
		fn(name, f)
	case func(animation.Frame):
		fn(f)
	}
}

func (t *transition) emitDone(name string) {
	switch fn := t.Props()["onDone"].(type) {
	case func(string):
		fn(name)
	case func():
		fn()
	}
}

func (t *transition) Render() core.Result {
	return core.Ready(core.Frag(t.Children()...))
}
