// Package core provides the element and component model of the render-kit
// engine and the reconciler that keeps a live component tree in sync with
// a declarative element tree.
//
// # Core Types
//
// Element is an immutable description of desired output: a Type, a Props
// bag and child Elements. Elements are cheap values built with [H] and never
// mutated after creation.
//
// Component is the live counterpart of an Element. There are two variants:
//
//   - [Primitive] owns a host Drawable (created through a [DrawableFactory])
//     and has no state of its own.
//   - [Custom] wraps a user-defined [Instance] that renders further Elements.
//
// # Custom Components
//
// Define a component type once and embed StateBase in its instance:
//
//	var Counter = core.Define("Counter", func() core.Instance { return &counter{} })
//
//	type counter struct {
//	    core.StateBase
//	}
//
//	func (c *counter) Render() core.Result {
//	    n, _ := c.State()["n"].(int)
//	    return core.Ready(core.H(core.Tag("text"), core.Props{"text": strconv.Itoa(n)}))
//	}
//
// Lifecycle hooks are optional capabilities: an instance opts in by
// implementing [Initializer], [DidMounter], [PropsReceiver], [UpdateGate],
// [DidUpdater], [WillUnmounter], [ErrorCatcher] or [SuspenseCatcher].
//
// # Scheduling
//
// Each render root owns a [Scheduler]. Reconciliation is single-threaded:
// state updates requested while another update is running are queued and
// applied afterwards in arrival order, and work coming from other goroutines
// must be marshalled with [Scheduler.Dispatch].
package core
