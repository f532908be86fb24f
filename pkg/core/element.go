package core

import (
	"maps"
	"reflect"
)

// Type identifies what an Element renders: a primitive [Tag] or a
// [ComponentType]. Two Elements are compatible when their Types compare equal.
type Type interface {
	TypeName() string
}

// Tag names a primitive drawable kind ("container", "sprite", "text", ...)
// or a string registered through [Factory.AddCustomResolver].
type Tag string

// TypeName returns the tag itself.
func (t Tag) TypeName() string { return string(t) }

// Fragment groups children without introducing a drawable. A custom
// component may return a Fragment from Render to produce several children.
const Fragment Tag = "#fragment"

// ComponentType is the identity of a custom component. Create one per
// component kind with [Define]; pointer identity is what the reconciler
// compares.
type ComponentType struct {
	name   string
	create func() Instance
}

// Define declares a custom component type.
func Define(name string, create func() Instance) *ComponentType {
	return &ComponentType{name: name, create: create}
}

// TypeName returns the name given to Define.
func (t *ComponentType) TypeName() string { return t.name }

// New creates a fresh instance of the component.
func (t *ComponentType) New() Instance { return t.create() }

// Props is the property bag carried by an Element. Props are replaced
// wholesale on every update; compare bags with [SameRef].
type Props map[string]any

// Get returns the value stored under key.
func (p Props) Get(key string) any {
	return p[key]
}

// String returns the string stored under key, or "".
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Float returns the numeric value stored under key, or 0.
func (p Props) Float(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Strings returns the string slice stored under key.
func (p Props) Strings(key string) []string {
	s, _ := p[key].([]string)
	return s
}

// With returns a copy of p with the given entries overlaid.
func (p Props) With(overlay Props) Props {
	out := make(Props, len(p)+len(overlay))
	maps.Copy(out, p)
	maps.Copy(out, overlay)
	return out
}

// PropOr returns props[key] as T, or def when missing or of another type.
func PropOr[T any](p Props, key string, def T) T {
	if v, ok := p[key].(T); ok {
		return v
	}
	return def
}

// KeyProp is the prop consulted during reconciliation in addition to type
// and position.
const KeyProp = "key"

// Element is an immutable description of desired output.
type Element struct {
	typ      Type
	props    Props
	children []*Element
}

// H builds an Element. Nil children are dropped.
func H(t Type, props Props, children ...*Element) *Element {
	el := &Element{typ: t, props: props}
	for _, child := range children {
		if child != nil {
			el.children = append(el.children, child)
		}
	}
	return el
}

// Frag builds a Fragment of the given children.
func Frag(children ...*Element) *Element {
	return H(Fragment, nil, children...)
}

// Type returns the element type.
func (e *Element) Type() Type { return e.typ }

// Props returns the element's property bag. Callers must not mutate it.
func (e *Element) Props() Props { return e.props }

// Children returns the child elements. Callers must not mutate the slice.
func (e *Element) Children() []*Element { return e.children }

// Key returns the reconciliation key, or nil.
func (e *Element) Key() any { return e.props[KeyProp] }

// WithProps returns a copy of e carrying props instead of its own.
func (e *Element) WithProps(props Props) *Element {
	return &Element{typ: e.typ, props: props, children: e.children}
}

// canUpdate reports whether a component rendered from existing may be
// updated in place with next.
func canUpdate(existing Component, next *Element) bool {
	if existing == nil || next == nil {
		return false
	}
	if existing.Type() != next.Type() {
		return false
	}
	return reflect.DeepEqual(existing.Element().Key(), next.Key())
}

// flatten expands a rendered element into the children list of its owner.
func flatten(el *Element) []*Element {
	if el == nil {
		return nil
	}
	if el.Type() == Fragment {
		return el.Children()
	}
	return []*Element{el}
}
