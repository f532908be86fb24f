// Package headless is an in-memory host backend. It keeps a plain tree of
// [Node]s in place of a real scene graph, measures text with
// golang.org/x/image fonts, and loads assets from any fs.FS. It backs the
// test harness and the command line renderer.
package headless

import (
	"slices"

	"github.com/go-drift/renderkit/pkg/core"
)

// Node is a scene-graph node. Every drawable the backend creates is a Node,
// and every Node can hold children.
type Node struct {
	Tag      core.Tag
	Props    core.Props
	Position core.Point
	// Size is set from width/height props; zero means measure.
	Size    core.Size
	Text    string
	Src     string
	Alpha   float64
	Visible bool

	// Updates counts Mutator.UpdateComponent calls for this node.
	Updates int

	component *core.Primitive
	parent    *Node
	children  []*Node
}

// NewNode creates an empty visible node.
func NewNode(tag core.Tag) *Node {
	return &Node{Tag: tag, Alpha: 1, Visible: true}
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes in paint order.
func (n *Node) Children() []*Node { return n.children }

// Component returns the primitive that owns this node while it is mounted.
func (n *Node) Component() *core.Primitive { return n.component }

func (n *Node) AddChild(child core.Drawable) {
	n.AddChildAt(child, len(n.children))
}

func (n *Node) AddChildAt(child core.Drawable, index int) {
	c, ok := child.(*Node)
	if !ok {
		return
	}
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	index = max(0, min(index, len(n.children)))
	n.children = slices.Insert(n.children, index, c)
	c.parent = n
}

func (n *Node) RemoveChild(child core.Drawable) {
	if i := n.ChildIndex(child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
		child.(*Node).parent = nil
	}
}

func (n *Node) ChildIndex(child core.Drawable) int {
	c, ok := child.(*Node)
	if !ok {
		return -1
	}
	return slices.Index(n.children, c)
}

func (n *Node) SetChildIndex(child core.Drawable, index int) {
	if n.ChildIndex(child) < 0 {
		return
	}
	n.RemoveChild(child)
	n.AddChildAt(child, index)
}

// GlobalPosition returns the node position in stage coordinates.
func (n *Node) GlobalPosition() core.Point {
	var p core.Point
	for current := n; current != nil; current = current.parent {
		p.X += current.Position.X
		p.Y += current.Position.Y
	}
	return p
}

// Walk visits n and its descendants depth-first. Returning false from visit
// skips the subtree below the visited node.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(visit)
	}
}

// Find returns every node below n (including n) matching predicate.
func (n *Node) Find(predicate func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if predicate(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}
