package animation

// Lerp interpolates linearly from a to b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Tween maps 0..1 progress onto the range From..To of any type.
type Tween[T any] struct {
	From, To T
	// Mix blends From and To; nil snaps to To.
	Mix func(a, b T, t float64) T
}

// Range is a numeric Tween.
func Range(from, to float64) Tween[float64] {
	return Tween[float64]{From: from, To: to, Mix: Lerp}
}

// At returns the value at progress t.
func (tw Tween[T]) At(t float64) T {
	if tw.Mix == nil {
		return tw.To
	}
	return tw.Mix(tw.From, tw.To, t)
}

// Of returns the value at c's current progress.
func (tw Tween[T]) Of(c *Controller) T {
	return tw.At(c.Value())
}
