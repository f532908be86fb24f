// Package testbed provides internal test components for the testing framework.
package testbed

import (
	"strconv"

	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/headless"
)

// Counter displays a count and increments it on click. Props: "initial"
// (int), "onTap" (func(int)).
var Counter = core.Define("Counter", func() core.Instance { return &counterState{} })

type counterState struct {
	core.StateBase
}

func (s *counterState) Init() error {
	s.SetState(core.State{"count": core.PropOr(s.Props(), "initial", 0)})
	return nil
}

func (s *counterState) count() int {
	n, _ := s.State()["count"].(int)
	return n
}

func (s *counterState) Render() core.Result {
	return core.Ready(core.H(headless.TagContainer, core.Props{
		"onClick": func() {
			next := s.count() + 1
			s.SetState(core.State{"count": next})
			if onTap, ok := s.Props().Get("onTap").(func(int)); ok {
				onTap(next)
			}
		},
	}, core.H(headless.TagText, core.Props{"text": strconv.Itoa(s.count())})))
}
