package core

// Drawable is an opaque host scene-graph object owned by a Primitive.
// A Primitive with children must own a Drawable that is also a Container.
type Drawable any

// Point is a position in host coordinates.
type Point struct {
	X, Y float64
}

// Size is a width/height pair in host coordinates.
type Size struct {
	Width, Height float64
}

// Container is the host scene-graph node Primitive components attach their
// drawables to.
type Container interface {
	AddChild(child Drawable)
	AddChildAt(child Drawable, index int)
	RemoveChild(child Drawable)
	// ChildIndex returns the position of child, or -1 if it is not a child.
	ChildIndex(child Drawable) int
	SetChildIndex(child Drawable, index int)
	GlobalPosition() Point
}

// Mutator applies and removes prop-driven visual state on host drawables.
type Mutator interface {
	UpdateComponent(p *Primitive)
	RemoveComponent(p *Primitive)
	Size(c Component) Size
}

// EventManager wires host input to component handlers. Implementations
// invoke the target's own handler and then call [Bubble] (or use [Emit]).
type EventManager interface {
	AssignEvents(p *Primitive)
	RemoveListeners(p *Primitive)
	FocusComponent(c Component)
}

// DrawableFactory creates host drawables for primitive tags. It returns an
// error wrapping errors.ErrNoResolver for tags it does not know.
type DrawableFactory interface {
	CreateDrawable(tag Tag, props Props) (Drawable, error)
}
