package components

import (
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// Sprite is a textured quad placed in the world. Position is where Origin
// lands; Origin is in unscaled pixels from the top-left of the region.
// A zero-sized TextureRect means the whole texture.
type Sprite struct {
	Texture     *metadata.Texture
	Position    math.Vec2
	Rotation    float32
	Scale       math.Vec2
	Origin      math.Vec2
	Colour      math.Vec4
	FlipX       bool
	FlipY       bool
	TextureRect math.Rect
}

// NewSprite returns a white, unscaled sprite showing the whole texture with
// its origin at the centre.
func NewSprite(texture *metadata.Texture) Sprite {
	s := Sprite{
		Texture: texture,
		Scale:   math.NewVec2One(),
		Colour:  math.NewVec4One(),
	}
	s.CenterOrigin()
	return s
}

// Region resolves the pixel rectangle sampled from the texture.
func (s *Sprite) Region() math.Rect {
	if s.TextureRect.Width > 0 && s.TextureRect.Height > 0 {
		return s.TextureRect
	}
	if s.Texture == nil {
		return math.Rect{}
	}
	return math.NewRect(0, 0, float32(s.Texture.Width), float32(s.Texture.Height))
}

func (s *Sprite) SetTextureRect(rect math.Rect) {
	s.TextureRect = rect
}

func (s *Sprite) CenterOrigin() {
	r := s.Region()
	s.Origin = math.NewVec2(r.Width*0.5, r.Height*0.5)
}

// Size is the region size after scaling.
func (s *Sprite) Size() math.Vec2 {
	r := s.Region()
	return math.NewVec2(r.Width*s.Scale.X, r.Height*s.Scale.Y)
}

// Bounds is the culling box: centred on Position, sized by Size, and
// ignoring both rotation and origin.
func (s *Sprite) Bounds() math.Rect {
	size := s.Size()
	return math.NewRect(s.Position.X-size.X*0.5, s.Position.Y-size.Y*0.5, size.X, size.Y)
}

// Corners returns the quad in world space ordered top-left, top-right,
// bottom-right, bottom-left.
func (s *Sprite) Corners() [4]math.Vec2 {
	r := s.Region()
	local := [4]math.Vec2{
		{X: 0, Y: 0},
		{X: r.Width, Y: 0},
		{X: r.Width, Y: r.Height},
		{X: 0, Y: r.Height},
	}
	var sin, cos float32 = 0, 1
	if s.Rotation != 0 {
		rad := math.DegToRad(s.Rotation)
		sin = math.Sin(rad)
		cos = math.Cos(rad)
	}
	var out [4]math.Vec2
	for i, p := range local {
		x := (p.X - s.Origin.X) * s.Scale.X
		y := (p.Y - s.Origin.Y) * s.Scale.Y
		if s.Rotation != 0 {
			x, y = x*cos-y*sin, x*sin+y*cos
		}
		out[i] = math.NewVec2(x+s.Position.X, y+s.Position.Y)
	}
	return out
}

// UVs normalises the region against the texture size and applies flips.
func (s *Sprite) UVs() (u0, v0, u1, v1 float32) {
	if s.Texture == nil || s.Texture.Width == 0 || s.Texture.Height == 0 {
		return 0, 0, 1, 1
	}
	r := s.Region()
	tw := float32(s.Texture.Width)
	th := float32(s.Texture.Height)
	u0, v0 = r.X/tw, r.Y/th
	u1, v1 = r.Right()/tw, r.Bottom()/th
	if s.FlipX {
		u0, u1 = u1, u0
	}
	if s.FlipY {
		v0, v1 = v1, v0
	}
	return u0, v0, u1, v1
}
