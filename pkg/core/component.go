package core

import "fmt"

// Status is a component's position in its lifecycle.
//
//	Unmounted ─► Mounting ─► Mounted ◄─► Updating
//	                            │
//	                            ▼
//	                       Unmounting ─► Unmounted
type Status int

const (
	StatusUnmounted Status = iota
	StatusMounting
	StatusMounted
	StatusUpdating
	StatusUnmounting
)

func (s Status) String() string {
	switch s {
	case StatusUnmounted:
		return "unmounted"
	case StatusMounting:
		return "mounting"
	case StatusMounted:
		return "mounted"
	case StatusUpdating:
		return "updating"
	case StatusUnmounting:
		return "unmounting"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Component is the capability set shared by [Primitive] and [Custom].
type Component interface {
	// Type returns the element type this component was created from.
	Type() Type
	// Element returns the element last applied to this component.
	Element() *Element
	// Props returns the current props.
	Props() Props
	// Parent returns the owning component, or nil for the root and for
	// components that have been unmounted.
	Parent() Component
	// Children returns the owned child components in element order.
	Children() []Component
	Status() Status
	Depth() int
	Meta() *Meta

	base() *componentBase
}

type componentBase struct {
	element   *Element
	props     Props
	parent    Component
	children  []Component
	container Container // holds this component's top-level drawables
	status    Status
	depth     int
	meta      *Meta
}

func (b *componentBase) Type() Type            { return b.element.Type() }
func (b *componentBase) Element() *Element     { return b.element }
func (b *componentBase) Props() Props          { return b.props }
func (b *componentBase) Parent() Component     { return b.parent }
func (b *componentBase) Status() Status        { return b.status }
func (b *componentBase) Depth() int            { return b.depth }
func (b *componentBase) Meta() *Meta           { return b.meta }
func (b *componentBase) base() *componentBase  { return b }
func (b *componentBase) Children() []Component { return b.children }

// FindAncestor returns the nearest proper ancestor of c matching predicate.
func FindAncestor(c Component, predicate func(Component) bool) Component {
	if c == nil {
		return nil
	}
	for current := c.Parent(); current != nil; current = current.Parent() {
		if predicate(current) {
			return current
		}
	}
	return nil
}

// Walk visits c and its descendants depth-first in element order. Returning
// false from visit skips the subtree below the visited component.
func Walk(c Component, visit func(Component) bool) {
	if c == nil || !visit(c) {
		return
	}
	for _, child := range c.Children() {
		Walk(child, visit)
	}
}

// typeName is used in errors and logs.
func typeName(c Component) string {
	if c == nil || c.Element() == nil {
		return "<nil>"
	}
	return c.Type().TypeName()
}

// FirstDrawable returns the first top-level drawable contributed by c.
func FirstDrawable(c Component) Drawable {
	switch c := c.(type) {
	case *Primitive:
		return c.drawable
	case *Custom:
		for _, child := range c.children {
			if child == nil {
				continue
			}
			if d := FirstDrawable(child); d != nil {
				return d
			}
		}
	}
	return nil
}

// drawableCount returns how many top-level drawables c places in its container.
func drawableCount(c Component) int {
	switch c := c.(type) {
	case *Primitive:
		return 1
	case *Custom:
		n := 0
		for _, child := range c.children {
			if child != nil {
				n += drawableCount(child)
			}
		}
		return n
	}
	return 0
}
