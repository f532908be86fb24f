package widgets

import (
	"context"

	"github.com/go-drift/renderkit/pkg/core"
)

// SuspenseType renders a fallback while descendants are pending.
var SuspenseType = core.Define("Suspense", func() core.Instance { return &suspense{} })

// Suspense shows Fallback while any descendant's Render returns
// [core.Suspend], and re-renders its children once every pending result
// settles. A rejected result is thrown to the error boundary above the
// Suspense.
type Suspense struct {
	Fallback *core.Element
	Key      any
	Children []*core.Element
}

// Element builds the Suspense element.
func (s Suspense) Element() *core.Element {
	props := core.Props{"fallback": s.Fallback}
	if s.Key != nil {
		props[core.KeyProp] = s.Key
	}
	return core.H(SuspenseType, props, s.Children...)
}

type suspense struct {
	core.StateBase
	pending map[*core.Pending]struct{}
	ctx     context.Context
}

func (s *suspense) Init() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.ctx = ctx
	s.pending = make(map[*core.Pending]struct{})
	s.OnDispose(cancel)
	return nil
}

// CatchPending switches to the fallback until p settles.
func (s *suspense) CatchPending(p *core.Pending) {
	if _, ok := s.pending[p]; ok {
		return
	}
	s.pending[p] = struct{}{}
	s.SetState(core.State{"waiting": len(s.pending)})

	meta := s.Meta()
	go func() {
		select {
		case <-p.Done():
		case <-s.ctx.Done():
			return
		}
		// Both may be ready; unmount wins.
		if s.ctx.Err() != nil {
			return
		}
		meta.Scheduler.Dispatch(func() { s.settle(p) })
	}()
}

func (s *suspense) settle(p *core.Pending) {
	if s.IsDisposed() {
		return
	}
	delete(s.pending, p)
	if err := p.Err(); err != nil {
		s.Throw(err)
	}
	s.SetState(core.State{"waiting": len(s.pending)})
}

func (s *suspense) Render() core.Result {
	if len(s.pending) > 0 {
		fallback, _ := s.Props()["fallback"].(*core.Element)
		return core.Ready(fallback)
	}
	return core.Ready(core.Frag(s.Children()...))
}
