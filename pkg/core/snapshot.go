package core

import (
	"fmt"
	"maps"
	"slices"
)

// Node is a serialisable view of one component, used by inspectors.
type Node struct {
	Type     string   `json:"type" yaml:"type"`
	Kind     string   `json:"kind" yaml:"kind"`
	Status   string   `json:"status" yaml:"status"`
	Depth    int      `json:"depth" yaml:"depth"`
	Key      string   `json:"key,omitempty" yaml:"key,omitempty"`
	Props    []string `json:"props,omitempty" yaml:"props,omitempty"`
	State    []string `json:"state,omitempty" yaml:"state,omitempty"`
	Drawable string   `json:"drawable,omitempty" yaml:"drawable,omitempty"`
	Children []Node   `json:"children,omitempty" yaml:"children,omitempty"`
}

// Snapshot captures the subtree rooted at c. Only prop and state keys are
// recorded, never values.
func Snapshot(c Component) Node {
	n := Node{
		Type:   typeName(c),
		Status: c.Status().String(),
		Depth:  c.Depth(),
		Props:  slices.Sorted(maps.Keys(c.Props())),
	}
	if key := c.Element().Key(); key != nil {
		n.Key = fmt.Sprint(key)
	}
	switch c := c.(type) {
	case *Primitive:
		n.Kind = "primitive"
		n.Drawable = fmt.Sprintf("%T", c.drawable)
	case *Custom:
		n.Kind = "custom"
		n.State = slices.Sorted(maps.Keys(c.state))
	}
	for _, child := range c.Children() {
		n.Children = append(n.Children, Snapshot(child))
	}
	return n
}
