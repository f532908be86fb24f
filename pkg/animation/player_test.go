package animation

import (
	"testing"
	"time"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func newTestTimeline() (*Timeline, *stepClock) {
	clock := &stepClock{now: time.Unix(100, 0)}
	return NewTimeline(clock), clock
}

func advance(tl *Timeline, clock *stepClock, d time.Duration) {
	clock.now = clock.now.Add(d)
	tl.Step()
}

func TestPlayer_DelayAndFrom(t *testing.T) {
	tl, clock := newTestTimeline()
	from := 10.0
	p := NewPlayer(tl, Config{Steps: []Step{
		{Property: "x", From: &from, To: 20, Duration: 100 * time.Millisecond, Delay: 100 * time.Millisecond},
	}})
	var frames []Frame
	p.OnUpdate(func(f Frame) { frames = append(frames, f) })
	p.Start(Frame{"x": 0})

	advance(tl, clock, 50*time.Millisecond)
	if got := frames[len(frames)-1]["x"]; got != 10 {
		t.Errorf("during delay x = %v, want 10", got)
	}
	advance(tl, clock, 100*time.Millisecond)
	if got := frames[len(frames)-1]["x"]; got != 15 {
		t.Errorf("mid step x = %v, want 15", got)
	}
	advance(tl, clock, 50*time.Millisecond)
	if got := frames[len(frames)-1]["x"]; got != 20 {
		t.Errorf("final x = %v, want 20", got)
	}
	if p.Active() {
		t.Error("player still active after final step")
	}
}

func TestPlayer_StopSuppressesDone(t *testing.T) {
	tl, clock := newTestTimeline()
	p := NewPlayer(tl, Config{Steps: []Step{{Property: "a", To: 1, Duration: time.Second}}})
	done := 0
	p.OnDone(func() { done++ })
	p.Start(nil)
	advance(tl, clock, 100*time.Millisecond)
	p.Stop()
	advance(tl, clock, 2*time.Second)

	if done != 0 {
		t.Errorf("done fired %d times after Stop", done)
	}
	if tl.HasActive() {
		t.Error("timeline still has an active ticker")
	}
}

func TestPlayer_DoneOnce(t *testing.T) {
	tl, clock := newTestTimeline()
	p := NewPlayer(tl, Config{Steps: []Step{{Property: "a", To: 1, Duration: 10 * time.Millisecond}}})
	done := 0
	p.OnDone(func() { done++ })
	p.Start(nil)
	for range 5 {
		advance(tl, clock, 10*time.Millisecond)
	}
	if done != 1 {
		t.Errorf("done fired %d times, want 1", done)
	}
}

func TestPlayer_ZeroDuration(t *testing.T) {
	tl, clock := newTestTimeline()
	p := NewPlayer(tl, Config{Steps: []Step{{Property: "a", To: 3}}})
	var last Frame
	done := false
	p.OnUpdate(func(f Frame) { last = f })
	p.OnDone(func() { done = true })
	p.Start(nil)
	advance(tl, clock, 0)

	if last["a"] != 3 || !done {
		t.Errorf("zero-duration player: frame=%v done=%v", last, done)
	}
}

func TestPlayer_Unsubscribe(t *testing.T) {
	tl, clock := newTestTimeline()
	p := NewPlayer(tl, Config{Steps: []Step{{Property: "a", To: 1, Duration: 10 * time.Millisecond}}})
	calls := 0
	remove := p.OnUpdate(func(Frame) { calls++ })
	remove()
	p.Start(nil)
	advance(tl, clock, 10*time.Millisecond)
	if calls != 0 {
		t.Errorf("removed listener called %d times", calls)
	}
}

func TestPlayer_Restart(t *testing.T) {
	tl, clock := newTestTimeline()
	p := NewPlayer(tl, Config{Steps: []Step{{Property: "a", To: 1, Duration: 100 * time.Millisecond}}})
	p.Start(nil)
	advance(tl, clock, 80*time.Millisecond)
	p.Start(nil)
	advance(tl, clock, 50*time.Millisecond)

	if got := p.Frame()["a"]; got != 0.5 {
		t.Errorf("after restart a = %v, want 0.5", got)
	}
	if !p.Active() {
		t.Error("restarted player should be active")
	}
}

func TestConfig_Predicates(t *testing.T) {
	cfg := Config{
		Enabled: func(s Scope) bool { return s.Props["on"] == true },
		Trigger: func(s Scope) bool { return s.State["open"] == true },
	}
	tests := []struct {
		name             string
		scope            Scope
		enabled, trigger bool
	}{
		{"none", Scope{}, false, false},
		{"enabled", Scope{Props: map[string]any{"on": true}}, true, false},
		{"triggered", Scope{State: map[string]any{"open": true}}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.IsEnabled(tt.scope); got != tt.enabled {
				t.Errorf("IsEnabled = %v, want %v", got, tt.enabled)
			}
			if got := cfg.IsTriggered(tt.scope); got != tt.trigger {
				t.Errorf("IsTriggered = %v, want %v", got, tt.trigger)
			}
		})
	}
	if !(Config{}).IsEnabled(Scope{}) || !(Config{}).IsTriggered(Scope{}) {
		t.Error("nil predicates should default to true")
	}
}

func TestCurveByName(t *testing.T) {
	for _, name := range []string{"", "linear", "ease", "ease-in", "ease-out", "ease-in-out"} {
		curve, ok := CurveByName(name)
		if !ok || curve == nil {
			t.Errorf("CurveByName(%q) missing", name)
			continue
		}
		if got := curve(1); got < 0.999 {
			t.Errorf("CurveByName(%q)(1) = %v", name, got)
		}
	}
	if _, ok := CurveByName("bounce"); ok {
		t.Error("unknown curve should not resolve")
	}
}
