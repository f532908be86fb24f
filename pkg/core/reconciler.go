package core

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-drift/renderkit/pkg/errors"
)

// Reconciler turns Element trees into Component trees and keeps them in
// sync. All methods must run on the root's owner goroutine, inside a
// Scheduler operation.
type Reconciler struct {
	factory Factory
	meta    *Meta
}

// NewReconciler creates a reconciler resolving types through factory and
// handing meta to every component it creates.
func NewReconciler(factory Factory, meta *Meta) *Reconciler {
	r := &Reconciler{factory: factory, meta: meta}
	meta.reconciler = r
	return r
}

// Meta returns the root-scoped services.
func (r *Reconciler) Meta() *Meta { return r.meta }

// CreateComponent builds the component for el and, recursively, its
// children (or the first Render output of a custom component), wiring
// parent. It returns nil for a nil element.
func (r *Reconciler) CreateComponent(el *Element, parent Component) (Component, error) {
	if el == nil {
		return nil, nil
	}
	c, err := r.factory.CreateComponent(el, r.meta)
	if err != nil {
		return nil, err
	}
	b := c.base()
	b.parent = parent
	b.meta = r.meta
	b.status = StatusMounting
	if parent != nil {
		b.depth = parent.Depth() + 1
	}

	var childElements []*Element
	switch c := c.(type) {
	case *Primitive:
		childElements = el.Children()
	case *Custom:
		if init, ok := c.instance.(Initializer); ok {
			if err := r.initialize(c, init); err != nil {
				r.discard(c)
				return nil, err
			}
		}
		childElements, err = r.render(c)
		if err != nil {
			r.discard(c)
			return nil, err
		}
	}

	for _, childEl := range childElements {
		child, err := r.CreateComponent(childEl, c)
		if err != nil {
			r.discard(c)
			return nil, err
		}
		if child != nil {
			b.children = append(b.children, child)
		}
	}
	return c, nil
}

func (r *Reconciler) initialize(c *Custom, init Initializer) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = r.fail(c, errors.PhaseMount, nil, rec)
		}
	}()
	if err := init.Init(); err != nil {
		if errors.IsFatalConfig(err) {
			return err
		}
		return r.fail(c, errors.PhaseMount, err, nil)
	}
	return nil
}

// render runs the instance's Render and translates the result into the
// component's child elements. Failures are routed to error boundaries and
// pending results to the nearest Suspense; in both cases the component
// renders nothing. Only errors nobody catches are returned.
func (r *Reconciler) render(c *Custom) ([]*Element, error) {
	if len(c.staged) > 0 {
		c.state = c.state.merge(c.staged)
		c.staged = nil
	}
	res, recovered := safeRender(c.instance)
	c.rendered = true
	switch {
	case recovered != nil:
		return nil, r.fail(c, errors.PhaseRender, nil, recovered)
	case res.err != nil:
		if errors.IsFatalConfig(res.err) {
			return nil, res.err
		}
		return nil, r.fail(c, errors.PhaseRender, res.err, nil)
	case res.pending != nil:
		return nil, r.suspend(c, res.pending)
	}
	return flatten(res.element), nil
}

func safeRender(instance Instance) (res Result, recovered any) {
	defer func() {
		if rec := recover(); rec != nil {
			recovered = rec
		}
	}()
	return instance.Render(), nil
}

// fail wraps a failure raised at c and propagates it to error boundaries.
func (r *Reconciler) fail(c Component, phase errors.Phase, err error, recovered any) error {
	var rerr *errors.RenderError
	if !stderrors.As(err, &rerr) || rerr.Phase != phase {
		rerr = &errors.RenderError{
			Component: typeName(c),
			Phase:     phase,
			Recovered: recovered,
			Err:       err,
			Timestamp: time.Now(),
		}
		if recovered != nil {
			rerr.StackTrace = errors.Stack(1)
		}
	}
	errors.ReportRenderError(rerr)
	return r.propagate(c, rerr)
}

// propagate walks the ancestors of from looking for an ErrorCatcher. The
// first one receives err; if it re-throws, the search resumes above it.
// The error is returned when no ancestor catches it.
func (r *Reconciler) propagate(from Component, err error) error {
	for current := from.Parent(); current != nil; current = current.Parent() {
		custom, ok := current.(*Custom)
		if !ok || custom.status == StatusUnmounting || custom.status == StatusUnmounted {
			continue
		}
		catcher, ok := custom.instance.(ErrorCatcher)
		if !ok {
			continue
		}
		rethrown := safeCatch(catcher, err)
		if rethrown == nil {
			r.meta.logger().Warn("error caught by boundary",
				slog.String("boundary", typeName(custom)),
				slog.String("error", err.Error()),
			)
			return nil
		}
		err = rethrown
	}
	return err
}

func safeCatch(catcher ErrorCatcher, err error) (rethrown error) {
	defer func() {
		if rec := recover(); rec != nil {
			rethrown = fmt.Errorf("%w (panic in DidCatch: %v)", err, rec)
		}
	}()
	return catcher.DidCatch(err)
}

func (r *Reconciler) suspend(c *Custom, p *Pending) error {
	for current := c.Parent(); current != nil; current = current.Parent() {
		custom, ok := current.(*Custom)
		if !ok {
			continue
		}
		if catcher, ok := custom.instance.(SuspenseCatcher); ok {
			catcher.CatchPending(p)
			return nil
		}
	}
	return &errors.ConfigError{Op: "core.Render", Component: typeName(c), Err: errors.ErrNoSuspense}
}

// MountComponent inserts c's drawables into container after any existing
// children, mounts the subtree in element order and then fires DidMount
// bottom-up.
func (r *Reconciler) MountComponent(c Component, container Container) error {
	if c == nil {
		return nil
	}
	if err := r.attach(c, container, -1); err != nil {
		return err
	}
	return r.didMount(c)
}

// attach places c's drawables into container at index (-1 appends).
func (r *Reconciler) attach(c Component, container Container, index int) error {
	b := c.base()
	b.container = container
	switch c := c.(type) {
	case *Primitive:
		if index < 0 {
			container.AddChild(c.drawable)
		} else {
			container.AddChildAt(c.drawable, index)
		}
		if r.meta.Mutator != nil {
			r.meta.Mutator.UpdateComponent(c)
		}
		if r.meta.Events != nil {
			r.meta.Events.AssignEvents(c)
		}
		if len(c.children) == 0 {
			return nil
		}
		inner, ok := c.drawable.(Container)
		if !ok {
			return &errors.ConfigError{
				Op:        "core.MountComponent",
				Component: typeName(c),
				Err:       fmt.Errorf("drawable %T cannot hold children", c.drawable),
			}
		}
		for _, child := range c.children {
			if err := r.attach(child, inner, -1); err != nil {
				return err
			}
		}
	case *Custom:
		for _, child := range c.children {
			if err := r.attach(child, container, index); err != nil {
				return err
			}
			if index >= 0 {
				index += drawableCount(child)
			}
		}
	}
	return nil
}

// didMount marks the subtree mounted, children first, and notifies
// DidMounter instances in the same order.
func (r *Reconciler) didMount(c Component) error {
	var errs []error
	for _, child := range c.Children() {
		if err := r.didMount(child); err != nil {
			errs = append(errs, err)
		}
	}
	c.base().status = StatusMounted
	if custom, ok := c.(*Custom); ok {
		if hook, ok := custom.instance.(DidMounter); ok {
			if err := r.safeHook(custom, errors.PhaseMount, hook.DidMount); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return stderrors.Join(errs...)
}

func (r *Reconciler) safeHook(c *Custom, phase errors.Phase, hook func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = r.fail(c, phase, nil, rec)
		}
	}()
	hook()
	return nil
}

// UpdateComponent applies next to c. c must be compatible with next.
func (r *Reconciler) UpdateComponent(c Component, next *Element) error {
	switch c := c.(type) {
	case *Primitive:
		return r.updatePrimitive(c, next)
	case *Custom:
		return r.updateCustom(c, next, nil)
	}
	return nil
}

func (r *Reconciler) updatePrimitive(p *Primitive, next *Element) error {
	nextProps := next.Props()
	rerender := p.ShouldRerender(nextProps)
	p.element = next
	p.props = nextProps
	p.status = StatusUpdating
	defer func() {
		if p.status == StatusUpdating {
			p.status = StatusMounted
		}
	}()
	if rerender {
		if r.meta.Mutator != nil {
			r.meta.Mutator.UpdateComponent(p)
		}
		if r.meta.Events != nil {
			r.meta.Events.RemoveListeners(p)
			r.meta.Events.AssignEvents(p)
		}
	}
	if len(next.Children()) == 0 && len(p.children) == 0 {
		return nil
	}
	inner, ok := p.drawable.(Container)
	if !ok {
		return &errors.ConfigError{
			Op:        "core.UpdateComponent",
			Component: typeName(p),
			Err:       fmt.Errorf("drawable %T cannot hold children", p.drawable),
		}
	}
	return r.reconcileChildren(p, next.Children(), inner)
}

// updateCustom runs the custom update sequence. next is nil for
// state-only updates, in which case WillReceiveProps is skipped.
func (r *Reconciler) updateCustom(c *Custom, next *Element, patch State) error {
	prevProps, prevState := c.props, c.state
	nextProps := prevProps
	if next != nil {
		nextProps = next.Props()
		if hook, ok := c.instance.(PropsReceiver); ok {
			c.receiving = true
			err := r.safeHook(c, errors.PhaseUpdate, func() { hook.WillReceiveProps(nextProps) })
			c.receiving = false
			if err != nil {
				return err
			}
		}
	}
	nextState := prevState.merge(patch).merge(c.staged)
	c.staged = nil

	should := true
	if gate, ok := c.instance.(UpdateGate); ok {
		should = gate.ShouldUpdate(nextProps, nextState)
	}
	if next != nil {
		c.element = next
	}
	c.props = nextProps
	c.state = nextState
	if !should {
		return nil
	}

	c.status = StatusUpdating
	r.meta.logger().Debug("update", slog.String("component", typeName(c)), slog.Int("depth", c.depth))
	elements, err := r.render(c)
	if err != nil {
		c.status = StatusMounted
		return err
	}
	if err := r.reconcileChildren(c, elements, c.container); err != nil {
		c.status = StatusMounted
		return err
	}
	c.status = StatusMounted
	if hook, ok := c.instance.(DidUpdater); ok {
		return r.safeHook(c, errors.PhaseUpdate, func() { hook.DidUpdate(prevProps, prevState) })
	}
	return nil
}

// reconcileChildren diffs elements against parent's children by position,
// type and key. Compatible children are updated in place; incompatible ones
// are unmounted and their replacements created and mounted at the same
// position. The parent's children slice is edited slot by slot so that
// position lookups during the walk always see a consistent tree.
func (r *Reconciler) reconcileChildren(parent Component, elements []*Element, container Container) error {
	b := parent.base()
	var errs []error
	for i, el := range elements {
		var existing Component
		if i < len(b.children) {
			existing = b.children[i]
		}
		if existing != nil && canUpdate(existing, el) {
			if err := r.UpdateComponent(existing, el); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if existing != nil {
			r.unmount(existing)
			b.children[i] = nil
		}
		child, err := r.CreateComponent(el, parent)
		if err != nil {
			errs = append(errs, err)
		}
		if i < len(b.children) {
			b.children[i] = child
		} else {
			b.children = append(b.children, child)
		}
		if child == nil {
			continue
		}
		if container == nil {
			// Not yet attached; the pending mount will place the child.
			continue
		}
		if err := r.attach(child, container, r.insertionIndex(parent, i)); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.didMount(child); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(b.children) - 1; i >= len(elements); i-- {
		if b.children[i] != nil {
			r.unmount(b.children[i])
		}
	}
	if len(b.children) > len(elements) {
		clear(b.children[len(elements):])
		b.children = b.children[:len(elements)]
	}
	b.children = compact(b.children)
	return stderrors.Join(errs...)
}

func compact(children []Component) []Component {
	out := children[:0]
	for _, c := range children {
		if c != nil {
			out = append(out, c)
		}
	}
	clear(children[len(out):])
	return out
}

// insertionIndex returns where a drawable placed at slot of parent belongs
// in the host container: just before the first drawable that follows it in
// tree order, or -1 to append when nothing follows.
func (r *Reconciler) insertionIndex(parent Component, slot int) int {
	current, index := parent, slot
	for current != nil {
		children := current.Children()
		for j := index + 1; j < len(children); j++ {
			if children[j] == nil {
				continue
			}
			if d := FirstDrawable(children[j]); d != nil && children[j].base().container != nil {
				return children[j].base().container.ChildIndex(d)
			}
		}
		if _, ok := current.(*Primitive); ok {
			return -1
		}
		next := current.Parent()
		if next == nil {
			return -1
		}
		index = indexOf(next.Children(), current)
		current = next
	}
	return -1
}

func indexOf(children []Component, c Component) int {
	for i, child := range children {
		if child == c {
			return i
		}
	}
	return -1
}

// UnmountComponent fires WillUnmount top-down across the subtree, then
// removes drawables in reverse mount order and severs parent links.
func (r *Reconciler) UnmountComponent(c Component) error {
	if c == nil {
		return nil
	}
	r.unmount(c)
	if parent := c.Parent(); parent != nil {
		pb := parent.base()
		if i := indexOf(pb.children, c); i >= 0 {
			pb.children = append(pb.children[:i:i], pb.children[i+1:]...)
		}
	}
	c.base().parent = nil
	return nil
}

func (r *Reconciler) unmount(c Component) {
	r.willUnmount(c)
	r.detach(c)
}

func (r *Reconciler) willUnmount(c Component) {
	b := c.base()
	if b.status == StatusUnmounted || b.status == StatusUnmounting {
		return
	}
	b.status = StatusUnmounting
	if custom, ok := c.(*Custom); ok {
		if hook, ok := custom.instance.(WillUnmounter); ok {
			func() {
				defer errors.Recover("core.WillUnmount", nil)
				hook.WillUnmount()
			}()
		}
		if d, ok := custom.instance.(interface{ RunDisposers() }); ok {
			d.RunDisposers()
		}
	}
	for _, child := range b.children {
		if child != nil {
			r.willUnmount(child)
		}
	}
}

func (r *Reconciler) detach(c Component) {
	b := c.base()
	for i := len(b.children) - 1; i >= 0; i-- {
		if b.children[i] != nil {
			r.detach(b.children[i])
		}
	}
	if p, ok := c.(*Primitive); ok {
		if r.meta.Events != nil {
			r.meta.Events.RemoveListeners(p)
		}
		if r.meta.Mutator != nil {
			r.meta.Mutator.RemoveComponent(p)
		}
		if b.container != nil {
			b.container.RemoveChild(p.drawable)
		}
	}
	for _, child := range b.children {
		if child != nil {
			child.base().parent = nil
		}
	}
	b.children = nil
	b.container = nil
	b.status = StatusUnmounted
}

// discard releases a component whose creation failed before it was ever
// attached to a container.
func (r *Reconciler) discard(c Component) {
	r.willUnmount(c)
	r.detach(c)
	c.base().parent = nil
}
