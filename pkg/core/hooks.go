package core

// Disposable is implemented by controllers that hold resources.
type Disposable interface {
	Dispose()
}

// UseController creates a controller and registers it for disposal when
// the component unmounts.
//
// Example:
//
//	func (c *fader) Init() error {
//	    c.player = core.UseController(c, func() *animation.Player {
//	        return animation.NewPlayer(c.Meta().Timeline, fadeIn)
//	    })
//	    return nil
//	}
func UseController[C Disposable](s stateBase, create func() C) C {
	base := s.state()
	controller := create()
	base.OnDispose(controller.Dispose)
	return controller
}

// UseContext subscribes the component to key in the root's ContextManager.
// The current value (if any) is copied into state under stateKey right
// away, and every later Set re-renders the component with the new value.
// Call it from Init; the subscription is released on unmount.
func UseContext(s stateBase, key any, stateKey string) {
	base := s.state()
	meta := base.Meta()
	if meta == nil || meta.Contexts == nil {
		return
	}
	if v, ok := meta.Contexts.Get(key); ok {
		base.SetState(State{stateKey: v})
	}
	unsub := meta.Contexts.Subscribe(key, func(v any) {
		base.SetState(State{stateKey: v})
	})
	base.OnDispose(unsub)
}
