package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/go-drift/renderkit/pkg/errors"
)

const (
	tagLabel Tag = "label"
	tagBox   Tag = "box"
	tagLeaf  Tag = "leaf"
	tagPanel Tag = "panel"
)

// node is a minimal scene-graph node used as both Drawable and Container.
type node struct {
	tag      Tag
	props    Props
	parent   *node
	children []*node
	updates  int
}

func (n *node) AddChild(d Drawable) { n.AddChildAt(d, len(n.children)) }

func (n *node) AddChildAt(d Drawable, index int) {
	child := d.(*node)
	child.parent = n
	index = max(0, min(index, len(n.children)))
	n.children = slices.Insert(n.children, index, child)
}

func (n *node) RemoveChild(d Drawable) {
	if i := n.ChildIndex(d); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
		d.(*node).parent = nil
	}
}

func (n *node) ChildIndex(d Drawable) int {
	child, _ := d.(*node)
	return slices.Index(n.children, child)
}

func (n *node) SetChildIndex(d Drawable, index int) {
	n.RemoveChild(d)
	n.AddChildAt(d, index)
}

func (n *node) GlobalPosition() Point { return Point{} }

// label renders n's subtree as "tag[name](child child)".
func (n *node) label() string {
	var sb strings.Builder
	sb.WriteString(string(n.tag))
	if name := n.props.String("name"); name != "" {
		fmt.Fprintf(&sb, "[%s]", name)
	}
	if len(n.children) > 0 {
		parts := make([]string, len(n.children))
		for i, c := range n.children {
			parts[i] = c.label()
		}
		fmt.Fprintf(&sb, "(%s)", strings.Join(parts, " "))
	}
	return sb.String()
}

// fakeHost implements DrawableFactory, Mutator and EventManager.
type fakeHost struct {
	mutations int
	removed   int
	assigned  int
	released  int
	focused   Component
}

func (h *fakeHost) CreateDrawable(tag Tag, props Props) (Drawable, error) {
	if tag == "unknown" {
		return nil, errors.ErrNoResolver
	}
	return &node{tag: tag}, nil
}

func (h *fakeHost) UpdateComponent(p *Primitive) {
	h.mutations++
	n := p.Drawable().(*node)
	n.props = p.Props()
	n.updates++
}

func (h *fakeHost) RemoveComponent(*Primitive) { h.removed++ }
func (h *fakeHost) Size(Component) Size        { return Size{} }
func (h *fakeHost) AssignEvents(*Primitive)    { h.assigned++ }
func (h *fakeHost) RemoveListeners(*Primitive) { h.released++ }
func (h *fakeHost) FocusComponent(c Component) { h.focused = c }

type harness struct {
	t     *testing.T
	host  *fakeHost
	stage *node
	meta  *Meta
	rec   *Reconciler
	top   Component
	fatal []error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	host := &fakeHost{}
	h := &harness{t: t, host: host, stage: &node{tag: "stage"}}
	h.meta = &Meta{
		Contexts:  NewContextManager(),
		Scheduler: NewScheduler(nil),
		Mutator:   host,
		Events:    host,
	}
	h.meta.Scheduler.OnFatal(func(err error) { h.fatal = append(h.fatal, err) })
	h.rec = NewReconciler(NewFactory(host), h.meta)
	return h
}

func (h *harness) mount(el *Element) error {
	return h.meta.Scheduler.Run(func() error {
		c, err := h.rec.CreateComponent(el, nil)
		if err != nil {
			return err
		}
		h.top = c
		return h.rec.MountComponent(c, h.stage)
	})
}

func (h *harness) mustMount(el *Element) {
	h.t.Helper()
	if err := h.mount(el); err != nil {
		h.t.Fatalf("mount: %v", err)
	}
}

func (h *harness) update(el *Element) error {
	return h.meta.Scheduler.Run(func() error { return h.rec.UpdateComponent(h.top, el) })
}

func (h *harness) unmount() error {
	return h.meta.Scheduler.Run(func() error { return h.rec.UnmountComponent(h.top) })
}

// scene returns the labels of the stage's children.
func (h *harness) scene() string {
	parts := make([]string, len(h.stage.children))
	for i, c := range h.stage.children {
		parts[i] = c.label()
	}
	return strings.Join(parts, " ")
}

// find returns the first component whose "name" prop equals name.
func (h *harness) find(name string) Component {
	var found Component
	Walk(h.top, func(c Component) bool {
		if found == nil && c.Props().String("name") == name {
			found = c
		}
		return found == nil
	})
	if found == nil {
		h.t.Fatalf("no component named %q", name)
	}
	return found
}

// tracker is a pass-through component that records its lifecycle into the
// *[]string under the "log" prop.
type tracker struct {
	StateBase
}

func (p *tracker) record(event string) {
	if log, ok := p.Props()["log"].(*[]string); ok {
		*log = append(*log, event+":"+p.Props().String("name"))
	}
}

func (p *tracker) Render() Result {
	p.record("render")
	return Ready(Frag(p.Children()...))
}

func (p *tracker) DidMount()    { p.record("mount") }
func (p *tracker) WillUnmount() { p.record("unmount") }

var trackerType = Define("Tracker", func() Instance { return &tracker{} })

// other is a pass-through component of a distinct type.
type other struct{ StateBase }

func (o *other) Render() Result { return Ready(Frag(o.Children()...)) }

var otherType = Define("Other", func() Instance { return &other{} })
