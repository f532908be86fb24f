package core

import "sync"

// Result is what Render returns: a ready element (possibly nil for "render
// nothing"), a pending asynchronous dependency, or a failure.
type Result struct {
	element *Element
	pending *Pending
	err     error
}

// Ready wraps a rendered element. A nil element renders nothing.
func Ready(el *Element) Result { return Result{element: el} }

// Suspend signals that rendering must wait for p. The nearest Suspense
// ancestor renders its fallback until p settles.
func Suspend(p *Pending) Result { return Result{pending: p} }

// Fail reports a render failure. It is routed to the nearest ancestor
// implementing ErrorCatcher.
func Fail(err error) Result { return Result{err: err} }

// Element returns the rendered element of a ready result.
func (r Result) Element() *Element { return r.element }

// Pending returns the awaited dependency of a suspended result.
func (r Result) Pending() *Pending { return r.pending }

// Err returns the failure of a failed result.
func (r Result) Err() error { return r.err }

// IsPending reports whether the result is suspended.
func (r Result) IsPending() bool { return r.pending != nil }

// Pending is an asynchronous dependency that settles exactly once.
// Resolve and Reject may be called from any goroutine.
type Pending struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewPending creates an unsettled dependency.
func NewPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Resolve settles the dependency successfully.
func (p *Pending) Resolve() {
	p.settle(nil)
}

// Reject settles the dependency with err.
func (p *Pending) Reject(err error) {
	p.settle(err)
}

func (p *Pending) settle(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once the dependency settles.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Settled reports whether Resolve or Reject has been called.
func (p *Pending) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Err returns the rejection error after the dependency settles.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}
