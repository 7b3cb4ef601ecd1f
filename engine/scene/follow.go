package scene

import (
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/yohamta/donburi"
)

// EntityTarget lets a camera follow an entity. Once the entity is removed
// the last seen position is reported.
type EntityTarget struct {
	entry *donburi.Entry
	last  math.Vec2
}

func NewEntityTarget(world donburi.World, entity donburi.Entity) *EntityTarget {
	return &EntityTarget{entry: world.Entry(entity)}
}

func (t *EntityTarget) WorldPosition() math.Vec2 {
	if t.entry != nil && t.entry.Valid() && t.entry.HasComponent(Transform) {
		t.last = Transform.Get(t.entry).Position
	}
	return t.last
}
