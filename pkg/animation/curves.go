package animation

import "math"

// Curve maps linear progress in [0,1] to eased progress. Every curve here
// fixes 0 and 1.
type Curve func(float64) float64

// Linear leaves progress unchanged.
func Linear(t float64) float64 { return t }

// The CSS timing functions.
var (
	Ease      = CubicBezier(0.25, 0.1, 0.25, 1)
	EaseIn    = CubicBezier(0.42, 0, 1, 1)
	EaseOut   = CubicBezier(0, 0, 0.58, 1)
	EaseInOut = CubicBezier(0.42, 0, 0.58, 1)
)

var curvesByName = map[string]Curve{
	"":            Linear,
	"linear":      Linear,
	"ease":        Ease,
	"ease-in":     EaseIn,
	"ease-out":    EaseOut,
	"ease-in-out": EaseInOut,
}

// CurveByName resolves a CSS timing function name. The empty name is
// linear.
func CurveByName(name string) (Curve, bool) {
	c, ok := curvesByName[name]
	return c, ok
}

// CubicBezier returns the curve through (0,0), (x1,y1), (x2,y2), (1,1), as
// CSS cubic-bezier() defines it. x1 and x2 must lie in [0,1].
func CubicBezier(x1, y1, x2, y2 float64) Curve {
	// Polynomial coefficients of each axis: a*s^3 + b*s^2 + c*s.
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx
	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	x := func(s float64) float64 { return ((ax*s+bx)*s + cx) * s }
	dx := func(s float64) float64 { return (3*ax*s+2*bx)*s + cx }
	y := func(s float64) float64 { return ((ay*s+by)*s + cy) * s }

	const eps = 1e-7
	return func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		}
		// Solve x(s) = t: Newton first, bisection when the slope vanishes.
		s := t
		for range 8 {
			err := x(s) - t
			if math.Abs(err) < eps {
				return y(s)
			}
			d := dx(s)
			if math.Abs(d) < eps {
				break
			}
			if s -= err / d; s < 0 || s > 1 {
				break
			}
		}
		lo, hi := 0.0, 1.0
		s = t
		for range 30 {
			v := x(s)
			if math.Abs(v-t) < eps {
				break
			}
			if v < t {
				lo = s
			} else {
				hi = s
			}
			s = (lo + hi) / 2
		}
		return y(s)
	}
}
