package animation

import (
	"maps"
	"time"
)

// Frame holds the current value of every animated property.
type Frame map[string]float64

// Step animates one property to a target value.
type Step struct {
	Property string
	// From overrides the starting value. When nil the step starts from the
	// property's value at the point the step begins.
	From     *float64
	To       float64
	Duration time.Duration
	// Delay is waited after the previous step before this one begins.
	Delay time.Duration
	// Curve eases the step. Nil is linear.
	Curve Curve
}

// Scope is what a player's predicates are evaluated against.
type Scope struct {
	State     map[string]any
	Props     map[string]any
	Component any
}

// Config describes one transition. Steps run in order.
type Config struct {
	Name  string
	Steps []Step
	// Enabled reports whether a player should exist for this definition.
	// Nil means always.
	Enabled func(Scope) bool
	// Trigger reports whether the player should be running. Nil means the
	// player starts as soon as it is created.
	Trigger func(Scope) bool
}

// IsEnabled evaluates the Enabled predicate.
func (c Config) IsEnabled(s Scope) bool {
	return c.Enabled == nil || c.Enabled(s)
}

// IsTriggered evaluates the Trigger predicate.
func (c Config) IsTriggered(s Scope) bool {
	return c.Trigger == nil || c.Trigger(s)
}

// Duration returns the total length of all steps including delays.
func (c Config) Duration() time.Duration {
	var total time.Duration
	for _, step := range c.Steps {
		total += step.Delay + step.Duration
	}
	return total
}

// Player plays a Config against a Timeline, emitting a Frame on every
// timeline step and a completion notification once the last step ends.
type Player struct {
	config     Config
	controller *Controller
	from       []float64
	frame      Frame
	active     bool
	updates    listeners[Frame]
	done       listeners[struct{}]
	disposed   bool
}

// NewPlayer creates an inactive player for config.
func NewPlayer(timeline *Timeline, config Config) *Player {
	p := &Player{
		config:     config,
		controller: NewController(timeline, config.Duration()),
		frame:      Frame{},
	}
	p.controller.OnChange(p.tick)
	p.controller.OnStatus(func(status Status) {
		if status == StatusAtEnd && p.active {
			p.active = false
			p.done.notify(struct{}{})
		}
	})
	return p
}

// Config returns the player's configuration.
func (p *Player) Config() Config {
	return p.config
}

// Active reports whether the player is running.
func (p *Player) Active() bool {
	return p.active
}

// Frame returns a copy of the most recent frame.
func (p *Player) Frame() Frame {
	return maps.Clone(p.frame)
}

// Start plays from the beginning. Properties without an explicit From take
// their starting value from initial, or 0. A running player restarts.
func (p *Player) Start(initial Frame) {
	if p.disposed {
		return
	}
	p.controller.Stop()
	p.frame = Frame{}
	values := maps.Clone(initial)
	if values == nil {
		values = Frame{}
	}
	p.from = make([]float64, len(p.config.Steps))
	for i, step := range p.config.Steps {
		if step.From != nil {
			p.from[i] = *step.From
		} else {
			p.from[i] = values[step.Property]
		}
		values[step.Property] = step.To
		if _, ok := p.frame[step.Property]; !ok {
			p.frame[step.Property] = p.from[i]
		}
	}
	p.active = true
	p.controller.Reset()
	p.controller.Forward()
}

// Stop halts the player without emitting completion.
func (p *Player) Stop() {
	p.active = false
	p.controller.Stop()
}

// OnUpdate registers fn to receive each frame. Returns an unsubscribe function.
func (p *Player) OnUpdate(fn func(Frame)) func() {
	return p.updates.add(fn)
}

// OnDone registers fn to run when the player completes. Returns an
// unsubscribe function.
func (p *Player) OnDone(fn func()) func() {
	return p.done.add(func(struct{}) { fn() })
}

// Dispose stops the player and drops all callbacks.
func (p *Player) Dispose() {
	p.Stop()
	p.disposed = true
	p.updates.clear()
	p.done.clear()
	p.controller.Dispose()
}

func (p *Player) tick(progress float64) {
	if !p.active {
		return
	}
	elapsed := time.Duration(progress * float64(p.controller.Duration))
	var offset time.Duration
	for i, step := range p.config.Steps {
		begin := offset + step.Delay
		end := begin + step.Duration
		offset = end
		switch {
		case elapsed < begin:
			continue
		case elapsed >= end:
			p.frame[step.Property] = step.To
		default:
			t := float64(elapsed-begin) / float64(step.Duration)
			if step.Curve != nil {
				t = step.Curve(t)
			}
			p.frame[step.Property] = Lerp(p.from[i], step.To, t)
		}
	}
	p.updates.notify(maps.Clone(p.frame))
}
