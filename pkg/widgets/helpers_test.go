package widgets_test

import (
	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/headless"
)

func text(s string) *core.Element {
	return core.H(headless.TagText, core.Props{"text": s})
}

// echo renders a text and counts its renders in *int under "renders".
var echo = core.Define("Echo", func() core.Instance { return &echoState{} })

type echoState struct {
	core.StateBase
}

func (p *echoState) Render() core.Result {
	if n, ok := p.Props()["renders"].(*int); ok {
		*n++
	}
	return core.Ready(text(p.Props().String("text")))
}

// thrower fails its render while "fail" is true.
var thrower = core.Define("Thrower", func() core.Instance { return &throwerState{} })

type throwerState struct {
	core.StateBase
}

func (t *throwerState) Render() core.Result {
	if err, ok := t.Props()["fail"].(error); ok {
		return core.Fail(err)
	}
	return core.Ready(text("ok"))
}
