package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/headless"
)

// Finder locates components in the mounted tree.
type Finder interface {
	// Evaluate returns all matching components under root (depth-first pre-order).
	Evaluate(root core.Component) []core.Component
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	components []core.Component
	finder     Finder
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() core.Component {
	if len(r.components) == 0 {
		panic(fmt.Sprintf("Finder found no components: %s", r.describe()))
	}
	return r.components[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() core.Component {
	if len(r.components) == 0 {
		return nil
	}
	return r.components[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) core.Component {
	if index < 0 || index >= len(r.components) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.components), r.describe()))
	}
	return r.components[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []core.Component {
	return r.components
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.components)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.components) > 0
}

// Instance returns the instance of the first match. Panics if there is no
// match or it is not a custom component.
func (r FinderResult) Instance() core.Instance {
	c, ok := r.First().(*core.Custom)
	if !ok {
		panic(fmt.Sprintf("Finder matched a %T, not a custom component: %s", r.First(), r.describe()))
	}
	return c.Instance()
}

// Node returns the headless node of the first match's first drawable, or
// nil.
func (r FinderResult) Node() *headless.Node {
	n, _ := core.FirstDrawable(r.First()).(*headless.Node)
	return n
}

// --- Concrete finders ---

// typeFinder matches custom components created from a ComponentType.
type typeFinder struct {
	ctype *core.ComponentType
}

func (f *typeFinder) Evaluate(root core.Component) []core.Component {
	return collectMatches(root, func(c core.Component) bool {
		custom, ok := c.(*core.Custom)
		return ok && custom.ComponentType() == f.ctype
	})
}

func (f *typeFinder) Description() string {
	return fmt.Sprintf("ByType(%s)", f.ctype.TypeName())
}

// ByType returns a finder that matches custom components of ctype.
func ByType(ctype *core.ComponentType) Finder {
	return &typeFinder{ctype: ctype}
}

// tagFinder matches primitives by tag.
type tagFinder struct {
	tag core.Tag
}

func (f *tagFinder) Evaluate(root core.Component) []core.Component {
	return collectMatches(root, func(c core.Component) bool {
		p, ok := c.(*core.Primitive)
		return ok && p.Tag() == f.tag
	})
}

func (f *tagFinder) Description() string {
	return fmt.Sprintf("ByTag(%s)", f.tag)
}

// ByTag returns a finder that matches primitives with the given tag.
func ByTag(tag core.Tag) Finder {
	return &tagFinder{tag: tag}
}

// keyFinder matches components whose element key equals the given key.
type keyFinder struct {
	key any
}

func (f *keyFinder) Evaluate(root core.Component) []core.Component {
	return collectMatches(root, func(c core.Component) bool {
		k := c.Element().Key()
		if k == nil || f.key == nil {
			return k == nil && f.key == nil
		}
		// Guard against non-comparable types (slices, maps, funcs).
		if !reflect.TypeOf(k).Comparable() || !reflect.TypeOf(f.key).Comparable() {
			return reflect.DeepEqual(k, f.key)
		}
		return k == f.key
	})
}

func (f *keyFinder) Description() string {
	return fmt.Sprintf("ByKey(%v)", f.key)
}

// ByKey returns a finder that matches components whose key equals key.
func ByKey(key any) Finder {
	return &keyFinder{key: key}
}

// textFinder matches primitives whose "text" prop equals text.
type textFinder struct {
	text string
}

func (f *textFinder) Evaluate(root core.Component) []core.Component {
	return collectMatches(root, func(c core.Component) bool {
		_, ok := c.(*core.Primitive)
		return ok && c.Props().String("text") == f.text
	})
}

func (f *textFinder) Description() string {
	return fmt.Sprintf("ByText(%q)", f.text)
}

// ByText returns a finder that matches primitives whose text prop is text.
func ByText(text string) Finder {
	return &textFinder{text: text}
}

// textContainingFinder matches primitives whose text contains substring.
type textContainingFinder struct {
	substring string
}

func (f *textContainingFinder) Evaluate(root core.Component) []core.Component {
	return collectMatches(root, func(c core.Component) bool {
		_, ok := c.(*core.Primitive)
		return ok && strings.Contains(c.Props().String("text"), f.substring)
	})
}

func (f *textContainingFinder) Description() string {
	return fmt.Sprintf("ByTextContaining(%q)", f.substring)
}

// ByTextContaining returns a finder that matches primitives whose text
// prop contains substring.
func ByTextContaining(substring string) Finder {
	return &textContainingFinder{substring: substring}
}

// predicateFinder matches components satisfying a predicate.
type predicateFinder struct {
	fn   func(core.Component) bool
	desc string
}

func (f *predicateFinder) Evaluate(root core.Component) []core.Component {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches components satisfying fn.
func ByPredicate(fn func(core.Component) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds components matching 'matching' that are
// descendants of components matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root core.Component) []core.Component {
	var results []core.Component
	seen := make(map[core.Component]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		for _, child := range ancestor.Children() {
			for _, match := range f.matching.Evaluate(child) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches components satisfying
// 'matching' that are descendants of components matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds components matching 'matching' that are ancestors
// of components matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(root core.Component) []core.Component {
	descendants := f.of.Evaluate(root)
	if len(descendants) == 0 {
		return nil
	}
	candidates := make(map[core.Component]bool)
	for _, c := range f.matching.Evaluate(root) {
		candidates[c] = true
	}
	var results []core.Component
	seen := make(map[core.Component]bool)
	for _, desc := range descendants {
		for p := desc.Parent(); p != nil; p = p.Parent() {
			if candidates[p] && !seen[p] {
				seen[p] = true
				results = append(results, p)
			}
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches components satisfying 'matching'
// that are ancestors of components matching 'of'.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

// collectMatches performs a depth-first pre-order traversal, collecting
// components that satisfy the predicate.
func collectMatches(root core.Component, predicate func(core.Component) bool) []core.Component {
	var results []core.Component
	core.Walk(root, func(c core.Component) bool {
		if predicate(c) {
			results = append(results, c)
		}
		return true
	})
	return results
}
