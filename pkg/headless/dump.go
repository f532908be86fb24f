package headless

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Dump renders the subtree under n as indented text, one node per line,
// with its sorted non-function props.
func Dump(n *Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func dump(sb *strings.Builder, n *Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(string(n.Tag))
	for _, key := range slices.Sorted(maps.Keys(n.Props)) {
		v := n.Props[key]
		if isFunc(v) {
			continue
		}
		fmt.Fprintf(sb, " %s=%v", key, v)
	}
	if n.Position.X != 0 || n.Position.Y != 0 {
		fmt.Fprintf(sb, " @(%g,%g)", n.Position.X, n.Position.Y)
	}
	sb.WriteByte('\n')
	for _, c := range n.children {
		dump(sb, c, depth+1)
	}
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// String returns Dump(n).
func (n *Node) String() string {
	return Dump(n)
}
