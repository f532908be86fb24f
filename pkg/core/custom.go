package core

import "maps"

// State is the keyed data owned by a custom component. It is replaced,
// never mutated in place, so hooks receive stable previous values.
type State map[string]any

func (s State) merge(patch State) State {
	if len(patch) == 0 {
		return s
	}
	out := make(State, len(s)+len(patch))
	maps.Copy(out, s)
	maps.Copy(out, patch)
	return out
}

// Instance is the user-defined part of a custom component.
type Instance interface {
	Render() Result
}

// Initializer runs once after the component is wired to its parent and
// before the first Render. Returning an error aborts creation.
type Initializer interface {
	Init() error
}

// DidMounter is notified once the component and all its descendants are
// mounted. Children are notified before their parent.
type DidMounter interface {
	DidMount()
}

// PropsReceiver is notified with the next props before an update, while
// the old props are still current.
type PropsReceiver interface {
	WillReceiveProps(next Props)
}

// UpdateGate decides whether an update re-renders.
type UpdateGate interface {
	ShouldUpdate(nextProps Props, nextState State) bool
}

// DidUpdater is notified after a re-render settles.
type DidUpdater interface {
	DidUpdate(prevProps Props, prevState State)
}

// WillUnmounter is notified before the component's drawables are removed.
// Parents are notified before their children.
type WillUnmounter interface {
	WillUnmount()
}

// ErrorCatcher marks an error boundary. DidCatch receives errors raised by
// descendants; returning a non-nil error re-throws it to the next boundary.
type ErrorCatcher interface {
	DidCatch(err error) error
}

// SuspenseCatcher receives pending dependencies surfaced by descendants.
type SuspenseCatcher interface {
	CatchPending(p *Pending)
}

// Custom is a composite component whose output is produced by an Instance.
type Custom struct {
	componentBase
	ctype     *ComponentType
	instance  Instance
	state     State
	staged    State
	rendered  bool
	receiving bool
}

func newCustom(ctype *ComponentType, el *Element) *Custom {
	c := &Custom{ctype: ctype, instance: ctype.New(), state: State{}}
	c.element = el
	c.props = el.Props()
	if binder, ok := c.instance.(interface{ bind(*Custom) }); ok {
		binder.bind(c)
	}
	return c
}

// ComponentType returns the definition this component was created from.
func (c *Custom) ComponentType() *ComponentType { return c.ctype }

// Instance returns the user-defined instance.
func (c *Custom) Instance() Instance { return c.instance }

// State returns the current state.
func (c *Custom) State() State { return c.state }

// setState applies patch immediately before the first render and while
// props are being received, and otherwise queues an update on the root
// scheduler.
func (c *Custom) setState(patch State) {
	switch {
	case !c.rendered:
		c.state = c.state.merge(patch)
		return
	case c.status == StatusUnmounted || c.status == StatusUnmounting:
		return
	case c.receiving:
		c.staged = c.staged.merge(patch)
		return
	}
	if c.meta == nil || c.meta.Scheduler == nil {
		return
	}
	c.meta.Scheduler.Enqueue(func() error {
		if c.status != StatusMounted {
			return nil
		}
		return c.meta.reconciler.updateCustom(c, nil, patch)
	})
}
