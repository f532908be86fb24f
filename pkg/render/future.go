package render

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// settlePoll bounds how long Wait sleeps between checks for finished
// loads. Load completion is observed after the notification is dispatched.
const settlePoll = 5 * time.Millisecond

// Future is the pending result of a Render call. It resolves once the tree
// is mounted and every load started by the initial mount has settled, and
// rejects on a failed preload, a failed mount, or an error from that first
// round of loads that no boundary handled.
type Future struct {
	root  *Root
	mount func() error

	// ready is closed when the initial resources have loaded.
	ready      chan struct{}
	preloadErr error
	mounted    bool

	once sync.Once
	done chan struct{}
	err  error
}

func newFuture(root *Root, mount func() error) *Future {
	return &Future{
		root:  root,
		mount: mount,
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (f *Future) settle(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once the render has resolved or rejected.
func (f *Future) Done() <-chan struct{} { return f.done }

// Err returns the rejection error. It is nil while pending.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Root returns the mounted root, or nil if the render is pending or failed.
func (f *Future) Root() *Root {
	select {
	case <-f.done:
		if f.err != nil {
			return nil
		}
		return f.root
	default:
		return nil
	}
}

// Mounted mounts the tree once the initial resources are available and
// returns the root without waiting for the loads the mount started. The
// future stays pending; only Wait settles it. Use Mounted to observe a tree
// while its first loads are still in flight.
func (f *Future) Mounted(ctx context.Context) (*Root, error) {
	sched := f.root.meta.Scheduler
	ready := f.ready
	for !f.mounted {
		select {
		case <-f.done:
			return f.result()
		default:
		}
		select {
		case <-ready:
			ready = nil
			f.mounted = true
			if err := f.start(); err != nil {
				f.settle(err)
				return nil, err
			}
		case <-sched.Wake():
			if err := sched.Drain(); err != nil {
				f.root.record(err)
			}
		case <-ctx.Done():
			f.abandon(ctx.Err())
			return nil, ctx.Err()
		}
	}
	return f.root, nil
}

// Wait mounts the tree, pumps the root until the loads started by the
// mount have been delivered, and returns the root. An error none of the
// tree's boundaries handled in that time unmounts the root and rejects the
// render. Wait must be called from the goroutine that will own the root.
func (f *Future) Wait(ctx context.Context) (*Root, error) {
	select {
	case <-f.done:
		return f.result()
	default:
	}
	if _, err := f.Mounted(ctx); err != nil {
		return nil, err
	}

	sched := f.root.meta.Scheduler
	poll := time.NewTicker(settlePoll)
	defer poll.Stop()
	for f.root.meta.Assets.Busy() || sched.Pending() > 0 {
		select {
		case <-sched.Wake():
			if err := sched.Drain(); err != nil {
				f.root.record(err)
			}
		case <-poll.C:
		case <-ctx.Done():
			f.abandon(ctx.Err())
			return nil, ctx.Err()
		}
	}
	if err := sched.Drain(); err != nil {
		f.root.record(err)
	}
	if err := f.root.takePending(); err != nil {
		f.root.logger.Error("initial render failed", slog.String("error", err.Error()))
		_ = f.root.Unmount()
		f.settle(err)
		return nil, err
	}
	f.settle(nil)
	return f.root, nil
}

func (f *Future) result() (*Root, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.root, nil
}

// abandon rejects the render after its caller gave up, releasing whatever
// was already mounted.
func (f *Future) abandon(err error) {
	if f.mounted && !f.root.closed {
		_ = f.root.Unmount()
	} else {
		f.root.close()
	}
	f.settle(err)
}

func (f *Future) start() error {
	if f.preloadErr != nil {
		f.root.logger.Error("preload failed", slog.String("error", f.preloadErr.Error()))
		f.root.close()
		return f.preloadErr
	}
	return f.mount()
}
