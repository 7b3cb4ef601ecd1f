package scene

import (
	"sort"

	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// SpriteDrawer is the part of the sprite renderer the scene draws into.
type SpriteDrawer interface {
	Camera() *components.Camera
	DrawSprite(sprite *components.Sprite)
}

type drawable struct {
	layer  int
	sprite components.Sprite
}

// RenderSystem draws every entity carrying a Transform and a SpriteRender.
// Sprites are ordered by layer, keeping creation order inside a layer, and
// culled against the renderer's camera before submission.
type RenderSystem struct {
	query   *donburi.Query
	culler  *components.FrustumCuller
	queue   []drawable
	sprites []components.Sprite
	visible []*components.Sprite
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{
		query:  donburi.NewQuery(filter.Contains(Transform, SpriteRender)),
		culler: components.NewFrustumCuller(),
	}
}

// Draw submits the visible sprites and returns how many were drawn. It must
// run between the renderer's Begin and End.
func (rs *RenderSystem) Draw(world donburi.World, drawer SpriteDrawer) int {
	rs.queue = rs.queue[:0]
	rs.query.Each(world, func(entry *donburi.Entry) {
		sr := SpriteRender.Get(entry)
		if sr.Hidden {
			return
		}
		tr := Transform.Get(entry)
		sprite := sr.Sprite
		sprite.Position = tr.Position
		sprite.Rotation = tr.Rotation
		sprite.Scale.X *= tr.Scale.X
		sprite.Scale.Y *= tr.Scale.Y
		rs.queue = append(rs.queue, drawable{layer: sr.Layer, sprite: sprite})
	})
	sort.SliceStable(rs.queue, func(i, j int) bool {
		return rs.queue[i].layer < rs.queue[j].layer
	})

	rs.sprites = rs.sprites[:0]
	for i := range rs.queue {
		rs.sprites = append(rs.sprites, rs.queue[i].sprite)
	}

	if camera := drawer.Camera(); camera != nil {
		rs.culler.UpdateFrustum(camera)
	} else {
		rs.culler.Invalidate()
	}
	rs.visible = rs.culler.CullSprites(rs.sprites, rs.visible[:0])
	for _, sprite := range rs.visible {
		drawer.DrawSprite(sprite)
	}
	return len(rs.visible)
}
