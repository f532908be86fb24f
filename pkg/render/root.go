package render

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/errors"
)

// hostType is the invisible component every root mounts first. It renders
// the element it was last given, so Root.Update is an ordinary reconcile.
var hostType = core.Define("render.Root", func() core.Instance { return &host{} })

type host struct {
	core.StateBase
}

func (h *host) Render() core.Result {
	el, _ := h.Props().Get("element").(*core.Element)
	return core.Ready(el)
}

func hostElement(el *core.Element) *core.Element {
	return core.H(hostType, core.Props{"element": el})
}

// Root is a mounted component tree. Its methods must be called from the
// owner goroutine unless documented otherwise.
type Root struct {
	id         int64
	ctx        context.Context
	cancel     context.CancelFunc
	meta       *core.Meta
	reconciler *core.Reconciler
	container  core.Container
	host       core.Component
	frameRate  int
	logger     *slog.Logger

	fatal   error
	pending []error
	closed  bool
}

func (r *Root) mount(el *core.Element) error {
	err := r.meta.Scheduler.Run(func() error {
		h, err := r.reconciler.CreateComponent(hostElement(el), nil)
		if err != nil {
			return err
		}
		r.host = h
		return r.reconciler.MountComponent(h, r.container)
	})
	if err != nil {
		r.logger.Error("mount failed", slog.String("error", err.Error()))
		r.fatal = err
		if r.host != nil {
			_ = r.meta.Scheduler.Run(func() error { return r.reconciler.UnmountComponent(r.host) })
			r.host = nil
		}
		r.close()
		return err
	}
	r.logger.Debug("mounted")
	return nil
}

// raise receives errors that escaped queued work.
func (r *Root) raise(err error) {
	r.record(err)
}

func (r *Root) record(err error) {
	if r.fatal == nil {
		r.fatal = err
	}
	r.pending = append(r.pending, err)
}

func (r *Root) takePending() error {
	err := stderrors.Join(r.pending...)
	r.pending = nil
	return err
}

func (r *Root) close() {
	if r.closed {
		return
	}
	r.closed = true
	r.meta.Assets.Close()
	r.cancel()
}

// ID identifies the root in logs.
func (r *Root) ID() int64 { return r.id }

// Meta returns the root-scoped services.
func (r *Root) Meta() *core.Meta { return r.meta }

// Component returns the top-level component, or nil if the root renders
// nothing.
func (r *Root) Component() core.Component {
	if r.host == nil {
		return nil
	}
	if children := r.host.Children(); len(children) > 0 {
		return children[0]
	}
	return nil
}

// Err returns the first fatal error the root has seen.
func (r *Root) Err() error { return r.fatal }

// Closed reports whether the root has been unmounted.
func (r *Root) Closed() bool { return r.closed }

// Update reconciles the tree against el. Compatible components are kept;
// incompatible ones are replaced.
func (r *Root) Update(el *core.Element) error {
	if r.closed {
		return errors.ErrClosed
	}
	err := r.meta.Scheduler.Run(func() error {
		return r.reconciler.UpdateComponent(r.host, hostElement(el))
	})
	if err != nil {
		r.logger.Error("update failed", slog.String("error", err.Error()))
	}
	return err
}

// Unmount tears the tree down, cancels background loads and closes the
// root. Calling it again returns errors.ErrClosed.
func (r *Root) Unmount() error {
	if r.closed {
		return errors.ErrClosed
	}
	err := r.meta.Scheduler.Run(func() error {
		return r.reconciler.UnmountComponent(r.host)
	})
	r.host = nil
	r.close()
	r.logger.Debug("unmounted")
	return err
}

// Dispatch schedules fn on the owner goroutine. Safe for concurrent use.
func (r *Root) Dispatch(fn func()) {
	r.meta.Scheduler.Dispatch(fn)
}

// Pump runs dispatched work and returns any error raised since the last
// Pump, including failures that reached no error boundary.
func (r *Root) Pump() error {
	if err := r.meta.Scheduler.Drain(); err != nil {
		r.record(err)
	}
	return r.takePending()
}

// Step advances running animations to the timeline's current time.
func (r *Root) Step() error {
	if !r.meta.Timeline.HasActive() {
		return nil
	}
	err := r.meta.Scheduler.Run(func() error {
		r.meta.Timeline.Step()
		return nil
	})
	if err != nil {
		r.record(err)
	}
	return r.takePending()
}

// Frame pumps dispatched work and then steps animations.
func (r *Root) Frame() error {
	return stderrors.Join(r.Pump(), r.Step())
}

// Idle reports whether the root has no dispatched work, no loads in flight
// and no running animations.
func (r *Root) Idle() bool {
	return r.meta.Scheduler.Pending() == 0 &&
		!r.meta.Assets.Busy() &&
		!r.meta.Timeline.HasActive()
}

// Run drives the root until ctx is cancelled or a fatal error occurs.
// Dispatched work runs as soon as it arrives; animations tick at the
// configured frame rate.
func (r *Root) Run(ctx context.Context) error {
	if r.closed {
		return errors.ErrClosed
	}
	ticker := time.NewTicker(time.Second / time.Duration(r.frameRate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.meta.Scheduler.Wake():
			if err := r.Pump(); err != nil {
				return err
			}
		case <-ticker.C:
			if err := r.Step(); err != nil {
				return err
			}
		}
	}
}

// Focus asks the event manager to focus c.
func (r *Root) Focus(c core.Component) error {
	if r.closed {
		return errors.ErrClosed
	}
	if r.meta.Events == nil || c == nil {
		return nil
	}
	return r.meta.Scheduler.Run(func() error {
		r.meta.Events.FocusComponent(c)
		return nil
	})
}

// Snapshot captures the current tree.
func (r *Root) Snapshot() core.Node {
	c := r.Component()
	if c == nil {
		return core.Node{}
	}
	return core.Snapshot(c)
}

// Inspect captures the tree from any goroutine. It waits for the owner
// goroutine to pump.
func (r *Root) Inspect(ctx context.Context) (core.Node, error) {
	ch := make(chan core.Node, 1)
	r.Dispatch(func() { ch <- r.Snapshot() })
	select {
	case n := <-ch:
		return n, nil
	case <-ctx.Done():
		return core.Node{}, ctx.Err()
	}
}

// OnCommit registers fn to run after every scheduler operation. Returns
// an unregister function.
func (r *Root) OnCommit(fn func()) func() {
	return r.meta.Scheduler.OnCommit(fn)
}
