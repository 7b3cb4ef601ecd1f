package components

import (
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/tanema/gween"
)

// Axis selects which camera property a transition drives. Each axis holds at
// most one transition; starting another replaces it.
type Axis int

const (
	AxisPosition Axis = iota
	AxisZoom
	AxisRotation

	axisCount
)

func (a Axis) String() string {
	switch a {
	case AxisPosition:
		return "position"
	case AxisZoom:
		return "zoom"
	case AxisRotation:
		return "rotation"
	}
	return "unknown"
}

// SmoothstepEase is t²(3-2t) in gween's (time, begin, change, duration) form.
func SmoothstepEase(t, b, c, d float32) float32 {
	if d <= 0 {
		return b + c
	}
	return b + c*math.Smoothstep(t/d)
}

// Transition eases a value from Start to Target over Duration seconds.
// Zoom and rotation only use the X component.
type Transition struct {
	Axis     Axis
	Start    math.Vec2
	Target   math.Vec2
	Duration float32

	elapsed float32
	tweenX  *gween.Tween
	tweenY  *gween.Tween
}

func newTransition(axis Axis, start, target math.Vec2, duration float32) *Transition {
	t := &Transition{
		Axis:     axis,
		Start:    start,
		Target:   target,
		Duration: duration,
		tweenX:   gween.New(start.X, target.X, duration, SmoothstepEase),
	}
	if axis == AxisPosition {
		t.tweenY = gween.New(start.Y, target.Y, duration, SmoothstepEase)
	}
	return t
}

// Update advances the transition and returns the eased value. Once finished
// the value equals Target exactly.
func (t *Transition) Update(deltaTime float32) (math.Vec2, bool) {
	t.elapsed += deltaTime
	x, done := t.tweenX.Update(deltaTime)
	y := t.Target.Y
	if t.tweenY != nil {
		y, _ = t.tweenY.Update(deltaTime)
	}
	return math.Vec2{X: x, Y: y}, done
}

func (t *Transition) Elapsed() float32 {
	if t.elapsed > t.Duration {
		return t.Duration
	}
	return t.elapsed
}

// Progress is the linear completion fraction in [0,1].
func (t *Transition) Progress() float32 {
	if t.Duration <= 0 {
		return 1
	}
	return math.Clamp(t.elapsed/t.Duration, 0, 1)
}

// Shake jitters the view by up to Intensity world units, fading linearly to
// nothing over Duration seconds.
type Shake struct {
	Duration  float32
	Intensity float32
	Elapsed   float32
}

// Strength is the jitter amplitude for the current elapsed time.
func (s *Shake) Strength() float32 {
	if s.Duration <= 0 || s.Elapsed >= s.Duration {
		return 0
	}
	return s.Intensity * (1 - s.Elapsed/s.Duration)
}

func (s *Shake) Finished() bool {
	return s.Elapsed >= s.Duration
}
