package components

import (
	"testing"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func testTexture(w, h uint32) *metadata.Texture {
	return &metadata.Texture{ID: 1, Handle: 7, Width: w, Height: h, Name: "test"}
}

func TestFrustumFailsOpen(t *testing.T) {
	f := NewFrustumCuller()
	if f.IsValid() {
		t.Fatal("fresh culler is valid")
	}
	rects := []math.Rect{
		math.NewRect(1e6, 1e6, 1, 1),
		math.NewRect(-1e6, 0, 0, 0),
		math.NewRect(0, 0, 10, 10),
	}
	for _, r := range rects {
		if !f.IsRectVisible(r) {
			t.Errorf("fresh culler rejected %v", r)
		}
	}
	if !f.IsPointVisible(1e9, 1e9) {
		t.Error("fresh culler rejected a point")
	}
	s := NewSprite(testTexture(8, 8))
	s.Position = math.NewVec2(1e6, 1e6)
	if !f.IsSpriteVisible(&s) {
		t.Error("fresh culler rejected a sprite")
	}
}

func TestFrustumCulling(t *testing.T) {
	cam := NewCamera(800, 600)
	f := NewFrustumCuller()
	f.UpdateFrustum(cam)

	if f.Bounds() != math.NewRect(-400, -300, 800, 600) {
		t.Errorf("Bounds = %v, want (-400,-300,800,600)", f.Bounds())
	}
	if f.IsRectVisible(math.NewRect(1000, 1000, 10, 10)) {
		t.Error("rect at (1000,1000) is visible")
	}
	if !f.IsRectVisible(math.NewRect(0, 0, 10, 10)) {
		t.Error("rect at (0,0) is not visible")
	}
	if !f.IsPointVisible(-400, 300) {
		t.Error("corner point is not visible")
	}
	if f.IsPointVisible(-401, 0) {
		t.Error("point left of the view is visible")
	}
}

func TestFrustumIsStaleUntilUpdated(t *testing.T) {
	cam := NewCamera(800, 600)
	f := NewFrustumCuller()
	f.UpdateFrustum(cam)

	cam.SetPosition(5000, 5000)
	if !f.IsRectVisible(math.NewRect(0, 0, 10, 10)) {
		t.Error("culler refreshed without UpdateFrustum")
	}
	f.UpdateFrustum(cam)
	if f.IsRectVisible(math.NewRect(0, 0, 10, 10)) {
		t.Error("rect at origin visible after camera moved away")
	}

	f.Invalidate()
	if !f.IsRectVisible(math.NewRect(0, 0, 10, 10)) {
		t.Error("invalidated culler does not fail open")
	}
}

func TestFrustumSpriteAABB(t *testing.T) {
	cam := NewCamera(800, 600)
	f := NewFrustumCuller()
	f.UpdateFrustum(cam)

	s := NewSprite(testTexture(32, 32))
	s.Position = math.NewVec2(410, 0)
	if !f.IsSpriteVisible(&s) {
		t.Error("sprite overlapping the right edge is culled")
	}
	s.Position = math.NewVec2(420, 0)
	if f.IsSpriteVisible(&s) {
		t.Error("sprite past the right edge is visible")
	}

	s.Scale = math.NewVec2(2, 2)
	if !f.IsSpriteVisible(&s) {
		t.Error("scaled sprite reaching into the view is culled")
	}

	// Rotation does not change the culling box.
	s.Scale = math.NewVec2One()
	s.Rotation = 45
	if f.IsSpriteVisible(&s) {
		t.Error("rotation changed the culling box")
	}
}

func TestFrustumCullSpritesAliases(t *testing.T) {
	cam := NewCamera(800, 600)
	f := NewFrustumCuller()
	f.UpdateFrustum(cam)

	tex := testTexture(16, 16)
	sprites := make([]Sprite, 5)
	for i := range sprites {
		sprites[i] = NewSprite(tex)
	}
	sprites[1].Position = math.NewVec2(2000, 0)
	sprites[3].Position = math.NewVec2(0, -2000)

	visible := f.CullSprites(sprites, nil)
	if len(visible) != 3 {
		t.Fatalf("visible = %d, want 3", len(visible))
	}
	want := []int{0, 2, 4}
	for i, idx := range want {
		if visible[i] != &sprites[idx] {
			t.Errorf("visible[%d] does not point at sprites[%d]", i, idx)
		}
	}

	visible[0].Colour = math.NewVec4(1, 0, 0, 1)
	if sprites[0].Colour != math.NewVec4(1, 0, 0, 1) {
		t.Error("CullSprites returned copies")
	}

	reuse := f.CullSprites(sprites, visible[:0])
	if len(reuse) != 3 {
		t.Errorf("reused output len = %d, want 3", len(reuse))
	}
}
