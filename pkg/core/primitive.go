package core

// Primitive is a leaf-level component directly controlling a host drawable.
// It has no state; its output is whatever the Mutator derives from props.
type Primitive struct {
	componentBase
	tag      Tag
	drawable Drawable
}

func newPrimitive(el *Element, drawable Drawable) *Primitive {
	p := &Primitive{tag: el.Type().(Tag), drawable: drawable}
	p.element = el
	p.props = el.Props()
	return p
}

// Tag returns the primitive tag.
func (p *Primitive) Tag() Tag { return p.tag }

// Drawable returns the host object controlled by this component.
func (p *Primitive) Drawable() Drawable { return p.drawable }

// ShouldRerender reports whether next differs from the current props.
// The check is referential: an identical bag never re-renders.
func (p *Primitive) ShouldRerender(next Props) bool {
	return !SameRef(p.props, next)
}

// Handler returns the handler bound to eventType, if any.
func (p *Primitive) Handler(eventType string) any {
	return p.props[HandlerProp(eventType)]
}
