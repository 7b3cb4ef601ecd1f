package ebitengine

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

type attribute struct {
	offset int
	stride int
	ok     bool
}

func findAttribute(layout []metadata.VertexAttribute, location uint32) attribute {
	for _, a := range layout {
		if a.Location == location {
			return attribute{offset: a.Offset / 4, stride: int(a.Stride) / 4, ok: true}
		}
	}
	return attribute{}
}

// projectVertices runs the sprite vertex stage: clip = position * mvp, then
// the viewport transform to pixels with a top-left origin. UVs are scaled
// to texels because ebiten samples in source pixels.
func projectVertices(dst []ebiten.Vertex, data []float32, layout []metadata.VertexAttribute, mvp math.Mat4, viewportW, viewportH, texW, texH float32) []ebiten.Vertex {
	pos := findAttribute(layout, positionLocation)
	col := findAttribute(layout, colourLocation)
	uv := findAttribute(layout, texcoordLocation)
	if !pos.ok || pos.stride == 0 {
		return dst
	}

	for base := 0; base+pos.stride <= len(data); base += pos.stride {
		p := math.NewVec3(data[base+pos.offset], data[base+pos.offset+1], data[base+pos.offset+2]).Transform(mvp)
		v := ebiten.Vertex{
			DstX:   (p.X + 1) * 0.5 * viewportW,
			DstY:   (1 - p.Y) * 0.5 * viewportH,
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		}
		if col.ok {
			c := data[base+col.offset : base+col.offset+4]
			v.ColorR, v.ColorG, v.ColorB, v.ColorA = c[0], c[1], c[2], c[3]
		}
		if uv.ok {
			v.SrcX = data[base+uv.offset] * texW
			v.SrcY = data[base+uv.offset+1] * texH
		}
		dst = append(dst, v)
	}
	return dst
}

func ebitenBlend(mode metadata.BlendMode) ebiten.Blend {
	switch mode {
	case metadata.BlendModeNone:
		return ebiten.BlendCopy
	case metadata.BlendModeAdditive:
		return ebiten.BlendLighter
	case metadata.BlendModeMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	}
	return ebiten.BlendSourceOver
}

// premultiply converts straight RGBA8, as decoded by the image loader, into
// the premultiplied form ebiten stores.
func premultiply(pixels []uint8) []uint8 {
	out := make([]uint8, len(pixels))
	for i := 0; i+3 < len(pixels); i += 4 {
		a := uint16(pixels[i+3])
		out[i] = uint8(uint16(pixels[i]) * a / 255)
		out[i+1] = uint8(uint16(pixels[i+1]) * a / 255)
		out[i+2] = uint8(uint16(pixels[i+2]) * a / 255)
		out[i+3] = pixels[i+3]
	}
	return out
}

func toColor(c math.Vec4) color.Color {
	clamp := func(v float32) uint8 { return uint8(math.Clamp(v, 0, 1) * 255) }
	return color.NRGBA{R: clamp(c.X), G: clamp(c.Y), B: clamp(c.Z), A: clamp(c.W)}
}
