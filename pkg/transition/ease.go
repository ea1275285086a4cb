package transition

import "math"

// Easing maps normalized time t in [0, 1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// CubicInOut is symmetric cubic easing; the default for transitions.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// QuadInOut is symmetric quadratic easing.
func QuadInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t / 2
	}
	t--
	return (t*(2-t) + 1) / 2
}

// SinInOut is symmetric sinusoidal easing.
func SinInOut(t float64) float64 {
	return (1 - math.Cos(math.Pi*t)) / 2
}

// ExpOut decelerates exponentially and lands exactly on 1.
func ExpOut(t float64) float64 {
	if t >= 1 {
		return 1
	}
	return (1 - math.Pow(2, -10*t)) / (1 - math.Pow(2, -10))
}

// EasingByName resolves a configured easing name. Unknown names return
// CubicInOut.
func EasingByName(name string) Easing {
	switch name {
	case "linear":
		return Linear
	case "quad", "quad-in-out":
		return QuadInOut
	case "sin", "sin-in-out":
		return SinInOut
	case "exp", "exp-out":
		return ExpOut
	}
	return CubicInOut
}
