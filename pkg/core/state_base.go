package core

import (
	"sync"

	"github.com/go-drift/renderkit/pkg/errors"
)

// stateBase is satisfied by any struct that embeds StateBase.
// Hooks accept stateBase so callers can pass their instance directly.
type stateBase interface {
	state() *StateBase
}

func (s *StateBase) state() *StateBase { return s }

// StateBase gives a custom component instance access to its live
// component. Embed it in your instance:
//
//	type myComp struct {
//	    core.StateBase
//	}
//
//	func (c *myComp) Render() core.Result { ... }
type StateBase struct {
	host      *Custom
	disposers []func()
	disposed  bool
	mu        sync.Mutex
}

func (s *StateBase) bind(c *Custom) {
	s.host = c
}

// Component returns the live component hosting this instance.
func (s *StateBase) Component() *Custom {
	return s.host
}

// Props returns the current props.
func (s *StateBase) Props() Props {
	if s.host == nil {
		return nil
	}
	return s.host.props
}

// State returns the current state.
func (s *StateBase) State() State {
	if s.host == nil {
		return nil
	}
	return s.host.state
}

// Children returns the child elements passed to this component.
func (s *StateBase) Children() []*Element {
	if s.host == nil || s.host.element == nil {
		return nil
	}
	return s.host.element.Children()
}

// Meta returns the root-scoped services.
func (s *StateBase) Meta() *Meta {
	if s.host == nil {
		return nil
	}
	return s.host.meta
}

// SetState merges patch into the component state and schedules a
// re-render. Safe to call after unmount (becomes a no-op).
//
// SetState must run on the goroutine that owns the render root. From any
// other goroutine use SetStateAsync.
func (s *StateBase) SetState(patch State) {
	if s.IsDisposed() || s.host == nil {
		return
	}
	s.host.setState(patch)
}

// SetStateAsync marshals SetState onto the root's owner goroutine.
func (s *StateBase) SetStateAsync(patch State) {
	meta := s.Meta()
	if meta == nil || meta.Scheduler == nil {
		return
	}
	meta.Scheduler.Dispatch(func() {
		s.SetState(patch)
	})
}

// Throw routes err to the nearest error boundary above this component, as
// if Render had failed. Errors no boundary catches become fatal for the root.
func (s *StateBase) Throw(err error) {
	if s.IsDisposed() || s.host == nil || err == nil {
		return
	}
	c := s.host
	if c.meta == nil || c.meta.Scheduler == nil {
		return
	}
	c.meta.Scheduler.Enqueue(func() error {
		return c.meta.reconciler.fail(c, errors.PhaseAsset, err, nil)
	})
}

// OnDispose registers a cleanup function to be called when the component
// unmounts. Returns an unregister function. The cleanup runs at most once.
func (s *StateBase) OnDispose(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		cleanup()
		return func() {}
	}
	index := len(s.disposers)
	s.disposers = append(s.disposers, cleanup)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.disposers) {
			s.disposers[index] = nil
		}
	}
}

// RunDisposers executes all registered disposers in reverse order.
// Called automatically when the component unmounts.
func (s *StateBase) RunDisposers() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	disposers := s.disposers
	s.disposers = nil
	s.mu.Unlock()

	for i := len(disposers) - 1; i >= 0; i-- {
		if disposers[i] != nil {
			disposers[i]()
		}
	}
}

// IsDisposed returns true once the component has unmounted.
func (s *StateBase) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
