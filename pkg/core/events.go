package core

import (
	"fmt"
	"strings"

	"github.com/go-drift/renderkit/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Event is a dispatched interaction. Only handler code may change it, and
// only through StopPropagation.
type Event struct {
	Type           string
	CurrentTarget  Component
	OriginalTarget Component
	Payload        any
	stopped        bool
}

// NewEvent creates an event rooted at target.
func NewEvent(eventType string, target Component, payload any) *Event {
	return &Event{
		Type:           eventType,
		CurrentTarget:  target,
		OriginalTarget: target,
		Payload:        payload,
	}
}

// StopPropagation prevents handlers further up the tree from running.
func (e *Event) StopPropagation() { e.stopped = true }

// PropagationStopped reports whether StopPropagation has been called.
func (e *Event) PropagationStopped() bool { return e.stopped }

var handlerProps = map[string]string{
	"click":             "onClick",
	"tap":               "onTap",
	"pointerdown":       "onPointerDown",
	"pointerup":         "onPointerUp",
	"pointermove":       "onPointerMove",
	"pointerover":       "onPointerOver",
	"pointerout":        "onPointerOut",
	"pointertap":        "onPointerTap",
	"wheel":             "onWheel",
	"keydown":           "onKeyDown",
	"keyup":             "onKeyUp",
	"focus":             "onFocus",
	"blur":              "onBlur",
	"change":            "onChange",
	"submit":            "onSubmit",
	"rightclick":        "onRightClick",
	"globalpointermove": "onGlobalPointerMove",
}

// HandlerProp returns the prop name under which handlers for eventType are
// bound ("click" → "onClick"). Unknown types are title-cased after "on".
func HandlerProp(eventType string) string {
	if name, ok := handlerProps[eventType]; ok {
		return name
	}
	var sb strings.Builder
	sb.WriteString("on")
	for _, part := range strings.FieldsFunc(eventType, func(r rune) bool { return r == '-' || r == '_' || r == ':' }) {
		sb.WriteString(cases.Title(language.Und, cases.NoLower).String(part))
	}
	return sb.String()
}

// Emit invokes target's own handler for eventType, then bubbles the event
// to its ancestors.
func Emit(target Component, eventType string, payload any) error {
	e := NewEvent(eventType, target, payload)
	return withScheduler(target, func() error {
		if err := invoke(target, e); err != nil {
			return err
		}
		if e.stopped {
			return nil
		}
		return bubble(e)
	})
}

// Bubble dispatches e to the ancestors of its original target, starting at
// the target's parent. The target's own handler is assumed to have run.
// Bubbling stops when a handler calls StopPropagation or fails.
func Bubble(e *Event) error {
	return withScheduler(e.OriginalTarget, func() error { return bubble(e) })
}

func bubble(e *Event) error {
	for current := e.OriginalTarget.Parent(); current != nil; current = current.Parent() {
		e.CurrentTarget = current
		if err := invoke(current, e); err != nil {
			return err
		}
		if e.stopped {
			return nil
		}
	}
	return nil
}

func withScheduler(c Component, fn func() error) error {
	if c == nil {
		return nil
	}
	if meta := c.Meta(); meta != nil && meta.Scheduler != nil {
		return meta.Scheduler.Run(fn)
	}
	return fn()
}

// invoke calls c's handler for e.Type, routing failures to error boundaries
// above c.
func invoke(c Component, e *Event) error {
	handler := c.Props()[HandlerProp(e.Type)]
	if handler == nil {
		return nil
	}
	err, recovered := callHandler(handler, e)
	if err == nil && recovered == nil {
		return nil
	}
	e.stopped = true
	meta := c.Meta()
	if meta == nil || meta.reconciler == nil {
		if err == nil {
			err = fmt.Errorf("panic in %s handler: %v", e.Type, recovered)
		}
		return err
	}
	return meta.reconciler.fail(c, errors.PhaseEvent, err, recovered)
}

func callHandler(handler any, e *Event) (err error, recovered any) {
	defer func() {
		if rec := recover(); rec != nil {
			recovered = rec
		}
	}()
	switch h := handler.(type) {
	case func(*Event):
		h(e)
	case func(*Event) error:
		return h(e), nil
	case func():
		h()
	case func() error:
		return h(), nil
	default:
		return fmt.Errorf("handler for %q has unsupported type %T", e.Type, handler), nil
	}
	return nil, nil
}
