package testing

import (
	"sync/atomic"
	"time"
)

// epoch is where every FakeClock starts.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// FakeClock is an animation clock that only moves when told to. Safe for
// concurrent use.
type FakeClock struct {
	offset atomic.Int64
}

// NewFakeClock returns a clock reading 2024-01-01 UTC.
func NewFakeClock() *FakeClock { return &FakeClock{} }

func (c *FakeClock) Now() time.Time {
	return epoch.Add(time.Duration(c.offset.Load()))
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.offset.Add(int64(d))
}

// Set jumps to t, which may be earlier than the current time.
func (c *FakeClock) Set(t time.Time) {
	c.offset.Store(int64(t.Sub(epoch)))
}
