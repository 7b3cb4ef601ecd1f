package math

import (
	m "math"

	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Max returns the larger of a and b. A NaN in a yields b.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Lerp interpolates linearly between a and b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Smoothstep eases t in [0,1] with t²(3-2t). Inputs outside the range are clamped.
func Smoothstep(t float32) float32 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// NormalizeDegrees wraps an angle into [0, 360). NaN and ±Inf yield NaN.
func NormalizeDegrees(degrees float32) float32 {
	d := float32(m.Mod(float64(degrees), 360))
	if d < 0 {
		d += 360
	}
	// Mod of a tiny negative value can round back up to exactly 360.
	if d >= 360 {
		d = 0
	}
	return d
}

// ShortestArc returns a target angle equivalent to `to` that lies within
// 180 degrees of `from`, so interpolating between them takes the short way.
func ShortestArc(from, to float32) float32 {
	diff := to - from
	for diff > 180 {
		diff -= 360
	}
	for diff < -180 {
		diff += 360
	}
	return from + diff
}
