// Package layout places child drawables in simple list and grid
// arrangements. It does not measure anything itself: sizes come from the
// host Mutator and positions go back through a [Positioner].
package layout

import (
	"fmt"
	"strings"

	"github.com/go-drift/renderkit/pkg/core"
)

// Positioner is implemented by host Mutators that can move drawables.
type Positioner interface {
	SetPosition(c core.Component, p core.Point)
}

// Direction is the main axis of a List.
type Direction int

const (
	Vertical Direction = iota
	Horizontal
)

// ParseDirection accepts "vertical", "horizontal" or "" (vertical).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "vertical", "column":
		return Vertical, nil
	case "horizontal", "row":
		return Horizontal, nil
	}
	return Vertical, fmt.Errorf("layout: unknown direction %q", s)
}

func (d Direction) String() string {
	if d == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// List stacks items along one axis separated by Gap.
type List struct {
	Direction Direction
	Gap       float64
	Origin    core.Point
}

// Place returns the top-left position of each item.
func (l List) Place(sizes []core.Size) []core.Point {
	out := make([]core.Point, len(sizes))
	cursor := l.Origin
	for i, size := range sizes {
		out[i] = cursor
		if l.Direction == Horizontal {
			cursor.X += size.Width + l.Gap
		} else {
			cursor.Y += size.Height + l.Gap
		}
	}
	return out
}

// Grid places items row by row into fixed-size cells.
type Grid struct {
	// Columns is the number of cells per row; values below 1 mean 1.
	Columns int
	Gap     float64
	// Cell is the cell size. A zero dimension takes the largest item's.
	Cell   core.Size
	Origin core.Point
}

// CellSize returns the effective cell size for sizes.
func (g Grid) CellSize(sizes []core.Size) core.Size {
	cell := g.Cell
	for _, size := range sizes {
		if g.Cell.Width == 0 {
			cell.Width = max(cell.Width, size.Width)
		}
		if g.Cell.Height == 0 {
			cell.Height = max(cell.Height, size.Height)
		}
	}
	return cell
}

// Place returns the top-left position of each item.
func (g Grid) Place(sizes []core.Size) []core.Point {
	columns := max(g.Columns, 1)
	cell := g.CellSize(sizes)
	out := make([]core.Point, len(sizes))
	for i := range sizes {
		col, row := i%columns, i/columns
		out[i] = core.Point{
			X: g.Origin.X + float64(col)*(cell.Width+g.Gap),
			Y: g.Origin.Y + float64(row)*(cell.Height+g.Gap),
		}
	}
	return out
}

// Bounds returns the size of the box enclosing every placed item, measured
// from the origin.
func Bounds(origin core.Point, points []core.Point, sizes []core.Size) core.Size {
	var b core.Size
	for i, p := range points {
		b.Width = max(b.Width, p.X-origin.X+sizes[i].Width)
		b.Height = max(b.Height, p.Y-origin.Y+sizes[i].Height)
	}
	return b
}

// Placer computes positions from sizes. List and Grid are Placers.
type Placer interface {
	Place(sizes []core.Size) []core.Point
}

// Arrange measures children with mutator and moves them to the positions
// chosen by placer. It does nothing when mutator cannot position drawables.
func Arrange(mutator core.Mutator, children []core.Component, placer Placer) []core.Point {
	positioner, ok := mutator.(Positioner)
	if !ok || len(children) == 0 {
		return nil
	}
	sizes := make([]core.Size, len(children))
	for i, child := range children {
		sizes[i] = mutator.Size(child)
	}
	points := placer.Place(sizes)
	for i, child := range children {
		positioner.SetPosition(child, points[i])
	}
	return points
}
