package effects

import "math"

// EasingFunc maps time progress (0-1) to value progress. Output may leave
// the 0-1 range for overshooting curves.
type EasingFunc func(t float64) float64

var (
	EaseLinear EasingFunc = func(t float64) float64 { return t }

	// EaseOutQuad decelerates to zero velocity.
	EaseOutQuad EasingFunc = func(t float64) float64 { return t * (2 - t) }

	EaseInOutQuad EasingFunc = func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	}

	// EaseOutBack overshoots the target slightly, then settles.
	EaseOutBack EasingFunc = func(t float64) float64 {
		c1 := 1.70158
		c3 := c1 + 1
		return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
	}

	// EaseOutBounce lands like a dropped ball.
	EaseOutBounce EasingFunc = func(t float64) float64 {
		n1 := 7.5625
		d1 := 2.75
		switch {
		case t < 1/d1:
			return n1 * t * t
		case t < 2/d1:
			t -= 1.5 / d1
			return n1*t*t + 0.75
		case t < 2.5/d1:
			t -= 2.25 / d1
			return n1*t*t + 0.9375
		default:
			t -= 2.625 / d1
			return n1*t*t + 0.984375
		}
	}
)

// EasingByName returns the easing for a tag, or nil if the tag is unknown.
func EasingByName(name string) EasingFunc {
	switch name {
	case "linear", "none", "":
		return EaseLinear
	case "ease-out":
		return EaseOutQuad
	case "ease-in-out":
		return EaseInOutQuad
	case "back":
		return EaseOutBack
	case "bounce":
		return EaseOutBounce
	default:
		return nil
	}
}
