package testbed

import (
	"time"

	"github.com/go-drift/renderkit/pkg/animation"
	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/headless"
)

// AnimatedBox animates its width from "from" to "to" over "duration"
// (time.Duration) after mounting.
var AnimatedBox = core.Define("AnimatedBox", func() core.Instance { return &animatedBox{} })

type animatedBox struct {
	core.StateBase
	controller *animation.Controller
	width      animation.Tween[float64]
}

func (b *animatedBox) Init() error {
	props := b.Props()
	b.width = animation.Range(props.Float("from"), props.Float("to"))
	b.controller = core.UseController(b, func() *animation.Controller {
		return animation.NewController(b.Meta().Timeline, core.PropOr(props, "duration", time.Second))
	})
	b.controller.OnChange(func(float64) {
		b.SetState(core.State{"width": b.width.Of(b.controller)})
	})
	return nil
}

func (b *animatedBox) DidMount() {
	b.controller.Forward()
}

func (b *animatedBox) Render() core.Result {
	width, ok := b.State()["width"].(float64)
	if !ok {
		width = b.width.From
	}
	return core.Ready(core.H(headless.TagRect, core.Props{
		"width":  width,
		"height": b.Props().Float("height"),
	}))
}
