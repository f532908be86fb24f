package core

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-drift/renderkit/pkg/errors"
)

// Scheduler serialises all mutation of one component tree.
//
// Run executes an operation to completion; operations requested while one
// is already running are queued and executed afterwards in arrival order.
// Dispatch is the only goroutine-safe entry point: it parks a callback until
// the owner goroutine calls Drain.
type Scheduler struct {
	busy  bool
	queue []func() error

	mu         sync.Mutex
	dispatched []func()
	wake       chan struct{}

	fatal   func(error)
	commits Listeners[struct{}]
	logger  *slog.Logger
}

// NewScheduler creates an idle scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = errors.Logger()
	}
	return &Scheduler{
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// OnFatal sets the sink for errors raised by work that has no caller to
// return to (queued state updates, dispatched callbacks).
func (s *Scheduler) OnFatal(fn func(error)) {
	s.fatal = fn
}

// OnCommit registers fn to run each time the scheduler becomes idle after
// doing work. Returns an unregister function.
func (s *Scheduler) OnCommit(fn func()) func() {
	return s.commits.Add(func(struct{}) { fn() })
}

// Busy reports whether an operation is executing.
func (s *Scheduler) Busy() bool {
	return s.busy
}

// Run executes op, then every operation queued while it ran. If an
// operation is already executing, op is queued and Run returns nil; its
// error will surface from the outer Run.
func (s *Scheduler) Run(op func() error) error {
	if s.busy {
		s.queue = append(s.queue, op)
		return nil
	}
	s.busy = true
	var errs []error
	func() {
		defer func() { s.busy = false }()
		if err := op(); err != nil {
			errs = append(errs, err)
		}
		for len(s.queue) > 0 {
			next := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			if err := next(); err != nil {
				errs = append(errs, err)
			}
		}
		s.queue = nil
	}()
	s.commits.Notify(struct{}{})
	return stderrors.Join(errs...)
}

// Enqueue runs op like Run, sending any error to the fatal sink.
func (s *Scheduler) Enqueue(op func() error) {
	if err := s.Run(op); err != nil {
		s.raise(err)
	}
}

func (s *Scheduler) raise(err error) {
	s.logger.Error("unhandled render error", slog.String("error", err.Error()))
	errors.ReportFatal(err)
	if s.fatal != nil {
		s.fatal(err)
	}
}

// Dispatch schedules fn to run on the owner goroutine during the next
// Drain. Safe for concurrent use.
func (s *Scheduler) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.dispatched = append(s.dispatched, fn)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wake receives a value whenever Dispatch adds work.
func (s *Scheduler) Wake() <-chan struct{} {
	return s.wake
}

// Pending returns the number of dispatched callbacks awaiting Drain.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dispatched)
}

// Drain runs dispatched callbacks until none remain. Each callback runs as
// its own scheduler operation. Errors raised along the way are returned.
func (s *Scheduler) Drain() error {
	var errs []error
	for {
		s.mu.Lock()
		batch := s.dispatched
		s.dispatched = nil
		s.mu.Unlock()
		if len(batch) == 0 {
			return stderrors.Join(errs...)
		}
		for _, fn := range batch {
			err := s.Run(func() (err error) {
				defer errors.Recover("core.Scheduler.Drain", func(p *errors.PanicError) {
					err = fmt.Errorf("dispatched callback: %w", p)
				})
				fn()
				return nil
			})
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
}
