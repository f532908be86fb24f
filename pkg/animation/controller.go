package animation

import (
	"fmt"
	"time"
)

// Status is where a Controller is in its run.
type Status int

const (
	// StatusAtStart: stopped at 0.
	StatusAtStart Status = iota
	StatusForward
	StatusReverse
	// StatusAtEnd: stopped at 1.
	StatusAtEnd
)

func (s Status) String() string {
	switch s {
	case StatusAtStart:
		return "at-start"
	case StatusForward:
		return "forward"
	case StatusReverse:
		return "reverse"
	case StatusAtEnd:
		return "at-end"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Controller moves a value between 0 and 1 over Duration, advancing only
// when its Timeline steps. Curve eases the motion; nil is linear.
//
// Dispose the controller when its owner goes away; [core.UseController]
// does this for components.
type Controller struct {
	Duration time.Duration
	Curve    Curve

	value    float64
	from, to float64
	status   Status
	timeline *Timeline
	ticker   *Ticker
	changes  listeners[float64]
	statuses listeners[Status]
}

// NewController creates a controller at 0 driven by timeline.
func NewController(timeline *Timeline, duration time.Duration) *Controller {
	return &Controller{Duration: duration, timeline: timeline}
}

// Value returns the current eased value.
func (c *Controller) Value() float64 { return c.value }

// Status returns the current status.
func (c *Controller) Status() Status { return c.status }

// Running reports whether the controller is moving.
func (c *Controller) Running() bool {
	return c.status == StatusForward || c.status == StatusReverse
}

// Forward runs from the current value to 1.
func (c *Controller) Forward() { c.run(1, StatusForward) }

// Reverse runs from the current value to 0.
func (c *Controller) Reverse() { c.run(0, StatusReverse) }

// Reset stops and jumps to 0, notifying value listeners.
func (c *Controller) Reset() {
	c.Stop()
	c.value = 0
	c.setStatus(StatusAtStart)
	c.changes.notify(c.value)
}

// Stop halts at the current value. The status is left unchanged.
func (c *Controller) Stop() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

// OnChange registers fn to receive every new value. Returns an unregister
// function.
func (c *Controller) OnChange(fn func(float64)) func() { return c.changes.add(fn) }

// OnStatus registers fn to receive status changes. Returns an unregister
// function.
func (c *Controller) OnStatus(fn func(Status)) func() { return c.statuses.add(fn) }

// Dispose stops the controller and drops its listeners.
func (c *Controller) Dispose() {
	c.Stop()
	c.changes.clear()
	c.statuses.clear()
}

func (c *Controller) run(to float64, status Status) {
	c.Stop()
	c.from, c.to = c.value, to
	c.setStatus(status)
	c.ticker = c.timeline.NewTicker(c.advance)
	c.ticker.Start()
}

// advance sets the value for elapsed time since the run began.
func (c *Controller) advance(elapsed time.Duration) {
	t := 1.0
	if c.Duration > 0 {
		t = min(float64(elapsed)/float64(c.Duration), 1)
	}
	eased := t
	if c.Curve != nil {
		eased = c.Curve(t)
	}
	c.value = Lerp(c.from, c.to, eased)
	c.changes.notify(c.value)
	if t < 1 {
		return
	}
	c.Stop()
	if c.to >= 1 {
		c.setStatus(StatusAtEnd)
	} else {
		c.setStatus(StatusAtStart)
	}
}

func (c *Controller) setStatus(s Status) {
	if c.status != s {
		c.status = s
		c.statuses.notify(s)
	}
}
