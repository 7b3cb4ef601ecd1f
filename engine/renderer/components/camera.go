package components

import (
	"time"

	"github.com/spaghettifunk/anima2d/engine/math"
	"golang.org/x/exp/rand"
)

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

// MinZoom keeps the projection from collapsing or inverting.
const MinZoom float32 = 0.1

// FollowTarget is anything the camera can track, typically a scene entity.
type FollowTarget interface {
	WorldPosition() math.Vec2
}

// CameraBounds is a world-space region the camera view is kept inside.
type CameraBounds struct {
	Left, Right, Top, Bottom float32
}

/**
 * @brief A 2D camera. Position is the world point shown at the centre of
 * the viewport. Rotation is in degrees. The view and projection matrices
 * are derived state and rebuilt on every mutation.
 * Ideally, these are created and managed by the camera system.
 */
type Camera struct {
	position       math.Vec2
	rotation       float32
	zoom           float32
	viewportWidth  int32
	viewportHeight int32

	viewMatrix       math.Mat4
	projectionMatrix math.Mat4

	bounds    CameraBounds
	hasBounds bool

	target       FollowTarget
	followOffset math.Vec2

	transitions [axisCount]*Transition
	shake       *Shake
	shakeOffset math.Vec2
	rng         *rand.Rand
}

type CameraLookup struct {
	ID             uint16
	ReferenceCount uint16
	Camera         *Camera
}

func NewCamera(viewportWidth, viewportHeight int32) *Camera {
	camera := &Camera{
		rng: rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
	camera.viewportWidth = viewportWidth
	camera.viewportHeight = viewportHeight
	camera.Reset()
	return camera
}

// Reset restores position, rotation and zoom and drops bounds, follow target
// and running effects. The viewport size is kept.
func (c *Camera) Reset() {
	c.position = math.NewVec2Zero()
	c.rotation = 0
	c.zoom = 1
	c.hasBounds = false
	c.bounds = CameraBounds{}
	c.target = nil
	c.followOffset = math.NewVec2Zero()
	c.transitions = [axisCount]*Transition{}
	c.shake = nil
	c.shakeOffset = math.NewVec2Zero()
	c.updateProjection()
	c.updateView()
}

// SetRandomSeed makes shake jitter reproducible.
func (c *Camera) SetRandomSeed(seed uint64) {
	c.rng = rand.New(rand.NewSource(seed))
}

func (c *Camera) GetPosition() math.Vec2 {
	return c.position
}

func (c *Camera) SetPosition(x, y float32) {
	c.position = math.NewVec2(x, y)
	c.applyBounds()
	c.updateView()
}

func (c *Camera) Move(dx, dy float32) {
	c.SetPosition(c.position.X+dx, c.position.Y+dy)
}

func (c *Camera) GetRotation() float32 {
	return c.rotation
}

func (c *Camera) SetRotation(degrees float32) {
	c.rotation = math.NormalizeDegrees(degrees)
	c.updateView()
}

func (c *Camera) GetZoom() float32 {
	return c.zoom
}

func (c *Camera) SetZoom(zoom float32) {
	c.zoom = math.Max(zoom, MinZoom)
	c.applyBounds()
	c.updateView()
}

func (c *Camera) GetViewportSize() (int32, int32) {
	return c.viewportWidth, c.viewportHeight
}

// SetViewportSize does not validate its input; a zero size produces a
// degenerate projection.
func (c *Camera) SetViewportSize(width, height int32) {
	c.viewportWidth = width
	c.viewportHeight = height
	c.updateProjection()
	c.applyBounds()
	c.updateView()
}

func (c *Camera) GetViewMatrix() math.Mat4 {
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() math.Mat4 {
	return c.projectionMatrix
}

// Update runs effects, then follow, then bounds, then rebuilds the view.
func (c *Camera) Update(deltaTime float32) {
	c.updateTransitions(deltaTime)
	c.updateShake(deltaTime)

	if c.target != nil {
		c.position = c.target.WorldPosition().Add(c.followOffset)
	}

	c.applyBounds()
	c.updateView()
}

func (c *Camera) updateTransitions(deltaTime float32) {
	for axis, t := range c.transitions {
		if t == nil {
			continue
		}
		value, done := t.Update(deltaTime)
		switch Axis(axis) {
		case AxisPosition:
			c.position = value
		case AxisZoom:
			c.zoom = math.Max(value.X, MinZoom)
		case AxisRotation:
			c.rotation = math.NormalizeDegrees(value.X)
		}
		if done {
			c.transitions[axis] = nil
		}
	}
}

func (c *Camera) updateShake(deltaTime float32) {
	if c.shake == nil {
		return
	}
	c.shake.Elapsed += deltaTime
	if c.shake.Finished() {
		c.shake = nil
		c.shakeOffset = math.NewVec2Zero()
		return
	}
	strength := c.shake.Strength()
	c.shakeOffset = math.NewVec2(
		(c.rng.Float32()*2-1)*strength,
		(c.rng.Float32()*2-1)*strength,
	)
}

// ShakeOffset is the jitter currently applied on top of the position.
func (c *Camera) ShakeOffset() math.Vec2 {
	return c.shakeOffset
}

// ScreenToWorld maps a pixel coordinate (top-left origin) to world space.
// The projection is pixel space, so the view steps are undone in reverse
// order instead of inverting the float32 matrix product.
func (c *Camera) ScreenToWorld(screen math.Vec2) math.Vec2 {
	centre := math.NewVec2(float32(c.viewportWidth)*0.5, float32(c.viewportHeight)*0.5)
	p := screen.Sub(centre).MulScalar(1 / c.zoom)
	p = p.Rotate(math.DegToRad(c.rotation))
	return p.Add(c.position).Add(c.shakeOffset)
}

// WorldToScreen maps a world coordinate to pixels with a top-left origin.
func (c *Camera) WorldToScreen(world math.Vec2) math.Vec2 {
	ndc := math.NewVec3(world.X, world.Y, 0).Transform(c.viewMatrix.Mul(c.projectionMatrix))
	return math.NewVec2(
		(ndc.X+1)*0.5*float32(c.viewportWidth),
		(1-ndc.Y)*0.5*float32(c.viewportHeight),
	)
}

// IsPointVisible projects the point and tests it against the viewport.
func (c *Camera) IsPointVisible(x, y float32) bool {
	s := c.WorldToScreen(math.NewVec2(x, y))
	return s.X >= 0 && s.X <= float32(c.viewportWidth) &&
		s.Y >= 0 && s.Y <= float32(c.viewportHeight)
}

// IsRectVisible tests rect against GetBounds, so rotation is not considered.
func (c *Camera) IsRectVisible(rect math.Rect) bool {
	return c.GetBounds().Intersects(rect)
}

// GetBounds is the axis-aligned world rectangle covered by the viewport,
// ignoring rotation and shake.
func (c *Camera) GetBounds() math.Rect {
	halfW, halfH := c.halfExtents()
	return math.NewRect(c.position.X-halfW, c.position.Y-halfH, 2*halfW, 2*halfH)
}

func (c *Camera) halfExtents() (float32, float32) {
	return float32(c.viewportWidth) / (2 * c.zoom), float32(c.viewportHeight) / (2 * c.zoom)
}

func (c *Camera) SetBounds(left, right, top, bottom float32) {
	c.bounds = CameraBounds{Left: left, Right: right, Top: top, Bottom: bottom}
	c.hasBounds = true
	c.applyBounds()
	c.updateView()
}

func (c *Camera) ClearBounds() {
	c.hasBounds = false
}

func (c *Camera) HasBounds() bool {
	return c.hasBounds
}

func (c *Camera) Bounds() (CameraBounds, bool) {
	return c.bounds, c.hasBounds
}

func (c *Camera) applyBounds() {
	if !c.hasBounds {
		return
	}
	halfW, halfH := c.halfExtents()
	c.position.X = clampAxis(c.position.X, c.bounds.Left+halfW, c.bounds.Right-halfW)
	c.position.Y = clampAxis(c.position.Y, c.bounds.Top+halfH, c.bounds.Bottom-halfH)
}

// clampAxis centres the axis when the bounds are narrower than the view.
func clampAxis(v, low, high float32) float32 {
	if low > high {
		return (low + high) * 0.5
	}
	return math.Clamp(v, low, high)
}

// Follow makes every Update place the camera at target + offset.
func (c *Camera) Follow(target FollowTarget, offset math.Vec2) {
	c.target = target
	c.followOffset = offset
}

func (c *Camera) Unfollow() {
	c.target = nil
	c.followOffset = math.NewVec2Zero()
}

func (c *Camera) IsFollowing() bool {
	return c.target != nil
}

// Shake starts a new shake, replacing any running one. A non-positive
// duration stops shaking.
func (c *Camera) Shake(duration, intensity float32) {
	if duration <= 0 {
		c.shake = nil
		c.shakeOffset = math.NewVec2Zero()
		c.updateView()
		return
	}
	c.shake = &Shake{Duration: duration, Intensity: intensity}
}

func (c *Camera) IsShaking() bool {
	return c.shake != nil
}

func (c *Camera) MoveTo(x, y, duration float32) {
	if duration <= 0 {
		c.transitions[AxisPosition] = nil
		c.SetPosition(x, y)
		return
	}
	c.transitions[AxisPosition] = newTransition(AxisPosition, c.position, math.NewVec2(x, y), duration)
}

func (c *Camera) ZoomTo(zoom, duration float32) {
	zoom = math.Max(zoom, MinZoom)
	if duration <= 0 {
		c.transitions[AxisZoom] = nil
		c.SetZoom(zoom)
		return
	}
	c.transitions[AxisZoom] = newTransition(AxisZoom, math.NewVec2(c.zoom, 0), math.NewVec2(zoom, 0), duration)
}

// RotateTo turns towards degrees along the shorter arc.
func (c *Camera) RotateTo(degrees, duration float32) {
	if duration <= 0 {
		c.transitions[AxisRotation] = nil
		c.SetRotation(degrees)
		return
	}
	target := math.ShortestArc(c.rotation, math.NormalizeDegrees(degrees))
	c.transitions[AxisRotation] = newTransition(AxisRotation, math.NewVec2(c.rotation, 0), math.NewVec2(target, 0), duration)
}

func (c *Camera) IsTransitioning(axis Axis) bool {
	if axis < 0 || axis >= axisCount {
		return false
	}
	return c.transitions[axis] != nil
}

// Transition returns the running transition on axis, or nil.
func (c *Camera) Transition(axis Axis) *Transition {
	if axis < 0 || axis >= axisCount {
		return nil
	}
	return c.transitions[axis]
}

func (c *Camera) updateProjection() {
	c.projectionMatrix = math.NewMat4Orthographic(0, float32(c.viewportWidth), float32(c.viewportHeight), 0, -1, 1)
}

// The view maps the camera position to the viewport centre:
// translate(-position) -> rotate(-rotation) -> scale(zoom) -> translate(viewport/2).
func (c *Camera) updateView() {
	eye := c.position.Add(c.shakeOffset)
	translation := math.NewMat4Translation(math.NewVec3(-eye.X, -eye.Y, 0))
	rotation := math.NewMat4EulerZ(math.DegToRad(-c.rotation))
	scale := math.NewMat4Scale(math.NewVec3(c.zoom, c.zoom, 1))
	centre := math.NewMat4Translation(math.NewVec3(float32(c.viewportWidth)*0.5, float32(c.viewportHeight)*0.5, 0))
	c.viewMatrix = translation.Mul(rotation).Mul(scale).Mul(centre)
}
