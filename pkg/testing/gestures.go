package testing

import (
	"fmt"

	"github.com/go-drift/renderkit/pkg/core"
)

// Emit delivers an event of eventType at the first component matched by
// finder, as the host would: the target's own handler runs, then the event
// bubbles to its ancestors.
func (t *Tester) Emit(finder Finder, eventType string, payload any) error {
	result := t.Find(finder)
	if !result.Exists() {
		return fmt.Errorf("Emit %s: finder matched no components: %s", eventType, finder.Description())
	}
	if n := result.Node(); n != nil {
		return t.backend.Emit(n, eventType, payload)
	}
	return core.Emit(result.First(), eventType, payload)
}

// Tap emits a click at the first component matched by finder.
func (t *Tester) Tap(finder Finder) error {
	return t.Emit(finder, "click", nil)
}

// Focus gives focus to the first component matched by finder.
func (t *Tester) Focus(finder Finder) error {
	result := t.Find(finder)
	if !result.Exists() {
		return fmt.Errorf("Focus: finder matched no components: %s", finder.Description())
	}
	return t.root.Focus(result.First())
}
