package widgets

import (
	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/layout"
)

// ListType arranges its children along one axis.
var ListType = core.Define("List", func() core.Instance { return &arranged{placer: listPlacer} })

// GridType arranges its children into rows of cells.
var GridType = core.Define("Grid", func() core.Instance { return &arranged{placer: gridPlacer} })

// List positions each child after the previous one, separated by Gap.
type List struct {
	Direction layout.Direction
	Gap       float64
	Key       any
	Children  []*core.Element
}

// Element builds the List element.
func (l List) Element() *core.Element {
	props := core.Props{"direction": l.Direction.String(), "gap": l.Gap}
	if l.Key != nil {
		props[core.KeyProp] = l.Key
	}
	return core.H(ListType, props, l.Children...)
}

// Grid positions children row by row. Zero cell dimensions take the
// largest child's.
type Grid struct {
	Columns    int
	Gap        float64
	CellWidth  float64
	CellHeight float64
	Key        any
	Children   []*core.Element
}

// Element builds the Grid element.
func (g Grid) Element() *core.Element {
	props := core.Props{
		"columns":    g.Columns,
		"gap":        g.Gap,
		"cellWidth":  g.CellWidth,
		"cellHeight": g.CellHeight,
	}
	if g.Key != nil {
		props[core.KeyProp] = g.Key
	}
	return core.H(GridType, props, g.Children...)
}

func listPlacer(props core.Props) layout.Placer {
	dir, _ := layout.ParseDirection(props.String("direction"))
	return layout.List{Direction: dir, Gap: props.Float("gap")}
}

func gridPlacer(props core.Props) layout.Placer {
	return layout.Grid{
		Columns: int(props.Float("columns")),
		Gap:     props.Float("gap"),
		Cell:    core.Size{Width: props.Float("cellWidth"), Height: props.Float("cellHeight")},
	}
}

// arranged renders its children and positions them after every mount and
// update, and again after each commit so that children which re-render on
// their own (an asset gate opening, say) are measured afresh.
type arranged struct {
	core.StateBase
	placer func(core.Props) layout.Placer
	points []core.Point
}

func (a *arranged) Init() error {
	if meta := a.Meta(); meta != nil && meta.Scheduler != nil {
		a.OnDispose(meta.Scheduler.OnCommit(a.arrange))
	}
	return nil
}

func (a *arranged) Render() core.Result {
	return core.Ready(core.Frag(a.Children()...))
}

func (a *arranged) DidMount() { a.arrange() }

func (a *arranged) DidUpdate(core.Props, core.State) { a.arrange() }

func (a *arranged) arrange() {
	meta := a.Meta()
	if meta == nil || meta.Mutator == nil || a.IsDisposed() {
		return
	}
	a.points = layout.Arrange(meta.Mutator, a.Component().Children(), a.placer(a.Props()))
}

// Positions returns where each child was last placed.
func (a *arranged) Positions() []core.Point {
	return a.points
}
