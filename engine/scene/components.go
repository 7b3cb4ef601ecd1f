package scene

import (
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/yohamta/donburi"
)

// TransformData places an entity in the world. Rotation is in degrees.
type TransformData struct {
	Position math.Vec2
	Rotation float32
	Scale    math.Vec2
}

func NewTransform(x, y float32) TransformData {
	return TransformData{Position: math.NewVec2(x, y), Scale: math.NewVec2One()}
}

// SpriteRenderData is the drawable part of an entity. The sprite's own
// position, rotation and scale are overwritten from the Transform each frame.
type SpriteRenderData struct {
	Sprite components.Sprite
	// Layer orders drawing; higher layers draw on top.
	Layer  int
	Hidden bool
}

var (
	Transform    = donburi.NewComponentType[TransformData]()
	SpriteRender = donburi.NewComponentType[SpriteRenderData]()

	Tile = donburi.NewTag().SetName("Tile")
)
