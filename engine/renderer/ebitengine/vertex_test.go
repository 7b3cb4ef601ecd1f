package ebitengine

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

var layout = []metadata.VertexAttribute{
	{Location: 0, Components: 3, Stride: 36, Offset: 0},
	{Location: 1, Components: 4, Stride: 36, Offset: 12},
	{Location: 2, Components: 2, Stride: 36, Offset: 28},
}

func approxEqual(a, b float32) bool {
	d := a - b
	return d < 1e-3 && d > -1e-3
}

func TestProjectVerticesPixelSpace(t *testing.T) {
	proj := math.NewMat4Orthographic(0, 800, 600, 0, -1, 1)
	data := []float32{
		0, 0, 0, 1, 0.5, 0.25, 1, 0, 0,
		800, 600, 0, 1, 1, 1, 0.5, 1, 1,
	}

	verts := projectVertices(nil, data, layout, math.NewMat4Identity().Mul(proj), 800, 600, 64, 32)
	if len(verts) != 2 {
		t.Fatalf("len = %d, want 2", len(verts))
	}
	if !approxEqual(verts[0].DstX, 0) || !approxEqual(verts[0].DstY, 0) {
		t.Errorf("top-left = (%f,%f), want (0,0)", verts[0].DstX, verts[0].DstY)
	}
	if !approxEqual(verts[1].DstX, 800) || !approxEqual(verts[1].DstY, 600) {
		t.Errorf("bottom-right = (%f,%f), want (800,600)", verts[1].DstX, verts[1].DstY)
	}
	if verts[0].ColorG != 0.5 || verts[1].ColorA != 0.5 {
		t.Errorf("colours = %+v", verts)
	}
	if verts[1].SrcX != 64 || verts[1].SrcY != 32 {
		t.Errorf("src = (%f,%f), want (64,32)", verts[1].SrcX, verts[1].SrcY)
	}
}

func TestProjectVerticesAppliesView(t *testing.T) {
	proj := math.NewMat4Orthographic(0, 100, 100, 0, -1, 1)
	view := math.NewMat4Translation(math.NewVec3(10, 20, 0))
	data := []float32{5, 5, 0, 1, 1, 1, 1, 0, 0}

	verts := projectVertices(nil, data, layout, view.Mul(proj), 100, 100, 1, 1)
	if !approxEqual(verts[0].DstX, 15) || !approxEqual(verts[0].DstY, 25) {
		t.Errorf("vertex = (%f,%f), want (15,25)", verts[0].DstX, verts[0].DstY)
	}
}

func TestProjectVerticesWithoutPosition(t *testing.T) {
	if got := projectVertices(nil, []float32{1, 2, 3}, nil, math.NewMat4Identity(), 1, 1, 1, 1); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestPremultiply(t *testing.T) {
	got := premultiply([]uint8{255, 128, 0, 128, 10, 20, 30, 255})
	want := []uint8{128, 64, 0, 128, 10, 20, 30, 255}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("premultiply = %v, want %v", got, want)
		}
	}
}

func TestEbitenBlend(t *testing.T) {
	if ebitenBlend(metadata.BlendModeAlpha) != ebiten.BlendSourceOver {
		t.Error("alpha does not map to source-over")
	}
	if ebitenBlend(metadata.BlendModeAdditive) != ebiten.BlendLighter {
		t.Error("additive does not map to lighter")
	}
	if ebitenBlend(metadata.BlendModeNone) != ebiten.BlendCopy {
		t.Error("none does not map to copy")
	}
}
