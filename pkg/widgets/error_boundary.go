package widgets

import (
	"github.com/go-drift/renderkit/pkg/core"
)

// ErrorBoundaryType catches errors from its subtree.
var ErrorBoundaryType = core.Define("ErrorBoundary", func() core.Instance { return &ErrorBoundaryState{} })

// ErrorBoundary catches render and handler errors from descendant
// components and renders a fallback instead of failing the whole root.
//
// Example:
//
//	widgets.ErrorBoundary{
//	    OnError: func(err error) {
//	        log.Printf("component error: %v", err)
//	    },
//	    Fallback: func(err error) *core.Element {
//	        return core.H(headless.TagText, core.Props{"text": "Failed to load"})
//	    },
//	    Children: []*core.Element{risky},
//	}.Element()
type ErrorBoundary struct {
	// Fallback renders the caught error. If nil, nothing is rendered. A
	// *core.Element "fallback" prop, as produced by scene slots, is also
	// accepted.
	Fallback func(error) *core.Element
	// OnError is called when an error is caught. Use for logging/analytics.
	OnError func(error)
	// Key is an optional key. Changing it remounts the boundary, clearing
	// any captured error.
	Key      any
	Children []*core.Element
}

// Element builds the boundary element.
func (b ErrorBoundary) Element() *core.Element {
	props := core.Props{}
	if b.Fallback != nil {
		props["fallback"] = b.Fallback
	}
	if b.OnError != nil {
		props["onError"] = b.OnError
	}
	if b.Key != nil {
		props[core.KeyProp] = b.Key
	}
	return core.H(ErrorBoundaryType, props, b.Children...)
}

// ErrorBoundaryState is the live instance of an ErrorBoundary.
type ErrorBoundaryState struct {
	core.StateBase
}

// DidCatch records err and switches to the fallback.
func (s *ErrorBoundaryState) DidCatch(err error) error {
	if onError, ok := s.Props()["onError"].(func(error)); ok {
		onError(err)
	}
	s.SetState(core.State{"error": err})
	return nil
}

// Reset clears the captured error and re-renders the children.
// Use this to retry rendering after an error.
func (s *ErrorBoundaryState) Reset() {
	s.SetState(core.State{"error": nil})
}

// HasError returns true if this boundary has captured an error.
func (s *ErrorBoundaryState) HasError() bool {
	return s.Error() != nil
}

// Error returns the captured error, or nil if none.
func (s *ErrorBoundaryState) Error() error {
	err, _ := s.State()["error"].(error)
	return err
}

func (s *ErrorBoundaryState) Render() core.Result {
	if err := s.Error(); err != nil {
		switch fallback := s.Props()["fallback"].(type) {
		case func(error) *core.Element:
			return core.Ready(fallback(err))
		case *core.Element:
			return core.Ready(fallback)
		}
		return core.Ready(nil)
	}
	return core.Ready(core.Frag(s.Children()...))
}

// ErrorBoundaryOf returns the nearest ErrorBoundary above c, or nil if none.
// This can be used to programmatically reset the boundary or check for errors.
func ErrorBoundaryOf(c core.Component) *ErrorBoundaryState {
	found := core.FindAncestor(c, func(a core.Component) bool {
		custom, ok := a.(*core.Custom)
		if !ok {
			return false
		}
		_, ok = custom.Instance().(*ErrorBoundaryState)
		return ok
	})
	if found == nil {
		return nil
	}
	return found.(*core.Custom).Instance().(*ErrorBoundaryState)
}
