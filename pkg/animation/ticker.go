// Package animation provides the timing primitives behind transitions:
// a frame-stepped [Timeline] of [Ticker]s, a [Controller] that
// drives a 0..1 value, easing curves, tweens, and the [Player] used by
// transition components.
//
// # Basic Usage
//
// Each render root owns a Timeline and steps it once per frame:
//
//	tl := animation.NewTimeline(nil)
//	player := animation.NewPlayer(tl, animation.Config{
//	    Steps: []animation.Step{{Property: "alpha", To: 1, Duration: 300 * time.Millisecond}},
//	})
//	player.OnUpdate(func(f animation.Frame) { fmt.Println(f["alpha"]) })
//	player.Start(animation.Frame{"alpha": 0})
//
//	// in the frame loop
//	tl.Step()
package animation

import (
	"sync"
	"time"
)

// Timeline owns a set of tickers and advances them together.
type Timeline struct {
	mu      sync.Mutex
	tickers map[*Ticker]struct{}
	clock   Clock
}

// NewTimeline creates a timeline reading time from clock. A nil clock reads
// the wall clock.
func NewTimeline(clock Clock) *Timeline {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timeline{
		tickers: make(map[*Ticker]struct{}),
		clock:   clock,
	}
}

// Now returns the timeline's current time.
func (tl *Timeline) Now() time.Time {
	return tl.clock.Now()
}

// NewTicker creates an inactive ticker on this timeline.
func (tl *Timeline) NewTicker(callback func(elapsed time.Duration)) *Ticker {
	return &Ticker{timeline: tl, callback: callback}
}

// Step advances all active tickers. Call once per frame from the owner
// goroutine.
func (tl *Timeline) Step() {
	tl.mu.Lock()
	if len(tl.tickers) == 0 {
		tl.mu.Unlock()
		return
	}
	// Copy so callbacks can start and stop tickers.
	tickers := make([]*Ticker, 0, len(tl.tickers))
	for ticker := range tl.tickers {
		tickers = append(tickers, ticker)
	}
	tl.mu.Unlock()

	now := tl.Now()
	for _, ticker := range tickers {
		if ticker.isActive && ticker.callback != nil {
			ticker.callback(now.Sub(ticker.start))
		}
	}
}

// HasActive returns true if any ticker is running.
func (tl *Timeline) HasActive() bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return len(tl.tickers) > 0
}

// Ticker calls a callback on each Timeline step while active.
//
// Ticker is the low-level timing primitive used by [Controller].
// The callback receives the elapsed time since Start was called.
type Ticker struct {
	timeline *Timeline
	callback func(elapsed time.Duration)
	isActive bool
	start    time.Time
}

// Start activates the ticker.
func (t *Ticker) Start() {
	if t.isActive {
		return
	}
	t.isActive = true
	t.start = t.timeline.Now()
	t.timeline.mu.Lock()
	t.timeline.tickers[t] = struct{}{}
	t.timeline.mu.Unlock()
}

// Stop deactivates the ticker.
func (t *Ticker) Stop() {
	if !t.isActive {
		return
	}
	t.isActive = false
	t.timeline.mu.Lock()
	delete(t.timeline.tickers, t)
	t.timeline.mu.Unlock()
}

// IsActive returns whether the ticker is currently running.
func (t *Ticker) IsActive() bool {
	return t.isActive
}

// Elapsed returns the time since the ticker started.
func (t *Ticker) Elapsed() time.Duration {
	if !t.isActive {
		return 0
	}
	return t.timeline.Now().Sub(t.start)
}
