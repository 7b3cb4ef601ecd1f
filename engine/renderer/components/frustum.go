package components

import "github.com/spaghettifunk/anima2d/engine/math"

// FrustumCuller caches the camera's visible rectangle once per frame. Until
// the first UpdateFrustum every query reports visible.
type FrustumCuller struct {
	bounds math.Rect
	valid  bool
}

func NewFrustumCuller() *FrustumCuller {
	return &FrustumCuller{}
}

func (f *FrustumCuller) UpdateFrustum(camera *Camera) {
	if camera == nil {
		return
	}
	f.bounds = camera.GetBounds()
	f.valid = true
}

func (f *FrustumCuller) IsValid() bool {
	return f.valid
}

// Invalidate drops the cached rectangle so queries fail open again.
func (f *FrustumCuller) Invalidate() {
	f.valid = false
}

func (f *FrustumCuller) Bounds() math.Rect {
	return f.bounds
}

func (f *FrustumCuller) IsPointVisible(x, y float32) bool {
	if !f.valid {
		return true
	}
	return f.bounds.ContainsPoint(math.NewVec2(x, y))
}

func (f *FrustumCuller) IsRectVisible(rect math.Rect) bool {
	if !f.valid {
		return true
	}
	return f.bounds.Intersects(rect)
}

func (f *FrustumCuller) IsSpriteVisible(sprite *Sprite) bool {
	if !f.valid {
		return true
	}
	return f.bounds.Intersects(sprite.Bounds())
}

// CullSprites appends pointers into sprites for every visible entry. The
// pointers alias the slice, so it must not be grown while out is in use.
func (f *FrustumCuller) CullSprites(sprites []Sprite, out []*Sprite) []*Sprite {
	for i := range sprites {
		if f.IsSpriteVisible(&sprites[i]) {
			out = append(out, &sprites[i])
		}
	}
	return out
}
