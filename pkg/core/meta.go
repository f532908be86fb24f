package core

import (
	"log/slog"

	"github.com/go-drift/renderkit/pkg/animation"
	"github.com/go-drift/renderkit/pkg/assets"
	"github.com/go-drift/renderkit/pkg/errors"
)

// Meta bundles the services scoped to one render root. It is handed to
// every component at creation; nothing in the engine is global per root.
type Meta struct {
	Contexts  *ContextManager
	Assets    *assets.Manager
	Timeline  *animation.Timeline
	Scheduler *Scheduler
	Mutator   Mutator
	Events    EventManager
	Logger    *slog.Logger
	// Values carries caller-supplied metadata.
	Values map[string]any

	reconciler *Reconciler
}

func (m *Meta) logger() *slog.Logger {
	if m == nil || m.Logger == nil {
		return errors.Logger()
	}
	return m.Logger
}
