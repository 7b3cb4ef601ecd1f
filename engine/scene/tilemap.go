package scene

import (
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/yohamta/donburi"
)

// ResourceLoader loads map data, usually the asset manager.
type ResourceLoader interface {
	Load(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
	Unload(resource *metadata.Resource) error
}

// TextureSource resolves tileset images, usually the texture system.
type TextureSource interface {
	Acquire(name string, autoRelease bool) (*metadata.Texture, error)
	Release(name string)
}

type TileSprite struct {
	Sprite components.Sprite
	Layer  int
}

// TileMap is a loaded map ready to be spawned. Width and Height are in pixels.
type TileMap struct {
	Name     string
	Width    float32
	Height   float32
	Tiles    []TileSprite
	Textures []string
}

// Bounds returns the map extent in the order Camera.SetBounds takes it.
func (tm *TileMap) Bounds() (left, right, top, bottom float32) {
	return 0, tm.Width, 0, tm.Height
}

// LoadTileMap reads a .tmx map and turns every placed tile into a sprite
// centred on its cell. Tileset textures are acquired once per image.
func LoadTileMap(loader ResourceLoader, textures TextureSource, name string) (*TileMap, error) {
	res, err := loader.Load(name, metadata.ResourceTypeTileMap, nil)
	if err != nil {
		return nil, err
	}
	defer loader.Unload(res)

	data, ok := res.Data.(*metadata.TileMapResourceData)
	if !ok {
		return nil, fmt.Errorf("resource '%s' is not a tile map", name)
	}

	tm := &TileMap{
		Name:   name,
		Width:  float32(data.Width * data.TileWidth),
		Height: float32(data.Height * data.TileHeight),
		Tiles:  make([]TileSprite, 0, len(data.Tiles)),
	}
	byImage := make(map[string]*metadata.Texture, len(data.TilesetImages))
	for _, image := range data.TilesetImages {
		texture, err := textures.Acquire(image, true)
		if err != nil {
			tm.Release(textures)
			return nil, fmt.Errorf("tile map '%s': %w", name, err)
		}
		byImage[image] = texture
		tm.Textures = append(tm.Textures, image)
	}

	tw, th := float32(data.TileWidth), float32(data.TileHeight)
	for _, tile := range data.Tiles {
		sprite := components.NewSprite(byImage[tile.TilesetImage])
		sprite.SetTextureRect(math.NewRect(float32(tile.SourceX), float32(tile.SourceY), float32(tile.SourceWidth), float32(tile.SourceHeight)))
		sprite.CenterOrigin()
		sprite.Position = math.NewVec2(float32(tile.Column)*tw+tw*0.5, float32(tile.Row)*th+th*0.5)
		sprite.FlipX = tile.FlipX
		sprite.FlipY = tile.FlipY
		tm.Tiles = append(tm.Tiles, TileSprite{Sprite: sprite, Layer: tile.Layer})
	}
	return tm, nil
}

// Release gives back the tileset textures acquired by LoadTileMap.
func (tm *TileMap) Release(textures TextureSource) {
	for _, image := range tm.Textures {
		textures.Release(image)
	}
	tm.Textures = nil
}

// SpawnTileMap creates one tagged entity per tile. Tile layers are offset by
// layerBase so other entities can be placed above or below the map.
func SpawnTileMap(world donburi.World, tm *TileMap, layerBase int) []donburi.Entity {
	entities := make([]donburi.Entity, 0, len(tm.Tiles))
	for _, tile := range tm.Tiles {
		entity := world.Create(Transform, SpriteRender, Tile)
		entry := world.Entry(entity)
		Transform.SetValue(entry, TransformData{
			Position: tile.Sprite.Position,
			Scale:    math.NewVec2One(),
		})
		SpriteRender.SetValue(entry, SpriteRenderData{
			Sprite: tile.Sprite,
			Layer:  layerBase + tile.Layer,
		})
		entities = append(entities, entity)
	}
	return entities
}

// SpawnSprite creates an entity drawn with sprite at the transform position.
func SpawnSprite(world donburi.World, sprite components.Sprite, transform TransformData, layer int) donburi.Entity {
	entity := world.Create(Transform, SpriteRender)
	entry := world.Entry(entity)
	Transform.SetValue(entry, transform)
	SpriteRender.SetValue(entry, SpriteRenderData{Sprite: sprite, Layer: layer})
	return entity
}
