package scene

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/yohamta/donburi"
)

type recordingDrawer struct {
	camera *components.Camera
	drawn  []components.Sprite
}

func (d *recordingDrawer) Camera() *components.Camera { return d.camera }

func (d *recordingDrawer) DrawSprite(sprite *components.Sprite) {
	d.drawn = append(d.drawn, *sprite)
}

func testTexture(handle metadata.Handle) *metadata.Texture {
	return &metadata.Texture{ID: uint32(handle), Handle: handle, Width: 16, Height: 16, Name: "tex"}
}

func TestRenderSystemOrdersByLayer(t *testing.T) {
	world := donburi.NewWorld()
	SpawnSprite(world, components.NewSprite(testTexture(3)), NewTransform(0, 0), 2)
	SpawnSprite(world, components.NewSprite(testTexture(1)), NewTransform(10, 0), 0)
	SpawnSprite(world, components.NewSprite(testTexture(2)), NewTransform(20, 0), 1)
	SpawnSprite(world, components.NewSprite(testTexture(4)), NewTransform(30, 0), 1)

	d := &recordingDrawer{}
	if n := NewRenderSystem().Draw(world, d); n != 4 {
		t.Fatalf("drawn = %d, want 4", n)
	}
	want := []metadata.Handle{1, 2, 4, 3}
	for i, h := range want {
		if d.drawn[i].Texture.Handle != h {
			t.Errorf("draw %d uses texture %d, want %d", i, d.drawn[i].Texture.Handle, h)
		}
	}
}

func TestRenderSystemAppliesTransform(t *testing.T) {
	world := donburi.NewWorld()
	sprite := components.NewSprite(testTexture(1))
	sprite.Scale = math.NewVec2(2, 2)
	SpawnSprite(world, sprite, TransformData{Position: math.NewVec2(5, 6), Rotation: 90, Scale: math.NewVec2(3, 1)}, 0)

	d := &recordingDrawer{}
	NewRenderSystem().Draw(world, d)
	got := d.drawn[0]
	if got.Position != math.NewVec2(5, 6) || got.Rotation != 90 || got.Scale != math.NewVec2(6, 2) {
		t.Errorf("sprite = %+v", got)
	}
}

func TestRenderSystemCullsAndSkipsHidden(t *testing.T) {
	world := donburi.NewWorld()
	SpawnSprite(world, components.NewSprite(testTexture(1)), NewTransform(0, 0), 0)
	SpawnSprite(world, components.NewSprite(testTexture(2)), NewTransform(5000, 0), 0)
	hidden := SpawnSprite(world, components.NewSprite(testTexture(3)), NewTransform(0, 0), 0)
	SpriteRender.Get(world.Entry(hidden)).Hidden = true

	d := &recordingDrawer{camera: components.NewCamera(800, 600)}
	rs := NewRenderSystem()
	if n := rs.Draw(world, d); n != 1 {
		t.Fatalf("drawn = %d, want 1", n)
	}
	if d.drawn[0].Texture.Handle != 1 {
		t.Errorf("drew texture %d, want 1", d.drawn[0].Texture.Handle)
	}

	// Without a camera nothing is culled.
	d = &recordingDrawer{}
	if n := rs.Draw(world, d); n != 2 {
		t.Errorf("drawn without camera = %d, want 2", n)
	}
}

func TestEntityTarget(t *testing.T) {
	world := donburi.NewWorld()
	player := SpawnSprite(world, components.NewSprite(testTexture(1)), NewTransform(100, 50), 0)
	target := NewEntityTarget(world, player)

	cam := components.NewCamera(800, 600)
	cam.Follow(target, math.NewVec2(0, -10))
	cam.Update(0.016)
	if cam.GetPosition() != math.NewVec2(100, 40) {
		t.Errorf("camera = %v, want (100,40)", cam.GetPosition())
	}

	Transform.Get(world.Entry(player)).Position = math.NewVec2(200, 50)
	cam.Update(0.016)
	if cam.GetPosition() != math.NewVec2(200, 40) {
		t.Errorf("camera = %v, want (200,40)", cam.GetPosition())
	}

	world.Remove(player)
	if target.WorldPosition() != math.NewVec2(200, 50) {
		t.Errorf("removed entity position = %v, want last seen (200,50)", target.WorldPosition())
	}
}

type fakeLoader struct {
	data    *metadata.TileMapResourceData
	unloads int
}

func (f *fakeLoader) Load(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if resourceType != metadata.ResourceTypeTileMap || f.data == nil {
		return nil, errors.New("not found")
	}
	return &metadata.Resource{Name: name, Data: f.data}, nil
}

func (f *fakeLoader) Unload(resource *metadata.Resource) error {
	f.unloads++
	return nil
}

type fakeTextures struct {
	refs    map[string]int
	missing string
}

func (f *fakeTextures) Acquire(name string, autoRelease bool) (*metadata.Texture, error) {
	if name == f.missing {
		return nil, errors.New("missing")
	}
	f.refs[name]++
	return &metadata.Texture{Handle: 9, Width: 32, Height: 32, Name: name}, nil
}

func (f *fakeTextures) Release(name string) { f.refs[name]-- }

func testMapData() *metadata.TileMapResourceData {
	return &metadata.TileMapResourceData{
		Width: 2, Height: 2, TileWidth: 16, TileHeight: 16,
		TilesetImages: []string{"textures/tiles.png"},
		Tiles: []metadata.TileInstance{
			{Column: 0, Row: 0, TilesetImage: "textures/tiles.png", SourceWidth: 16, SourceHeight: 16},
			{Column: 1, Row: 1, TilesetImage: "textures/tiles.png", SourceX: 16, SourceY: 16, SourceWidth: 16, SourceHeight: 16, FlipX: true, Layer: 1},
		},
	}
}

func TestLoadTileMap(t *testing.T) {
	loader := &fakeLoader{data: testMapData()}
	textures := &fakeTextures{refs: map[string]int{}}

	tm, err := LoadTileMap(loader, textures, "maps/level.tmx")
	if err != nil {
		t.Fatal(err)
	}
	if tm.Width != 32 || tm.Height != 32 {
		t.Errorf("size = %vx%v, want 32x32", tm.Width, tm.Height)
	}
	if textures.refs["textures/tiles.png"] != 1 {
		t.Errorf("tileset acquired %d times, want 1", textures.refs["textures/tiles.png"])
	}
	if loader.unloads != 1 {
		t.Errorf("unloads = %d, want 1", loader.unloads)
	}
	if len(tm.Tiles) != 2 {
		t.Fatalf("tiles = %d, want 2", len(tm.Tiles))
	}

	last := tm.Tiles[1].Sprite
	if last.Position != math.NewVec2(24, 24) {
		t.Errorf("tile position = %v, want (24,24)", last.Position)
	}
	if last.Bounds() != math.NewRect(16, 16, 16, 16) {
		t.Errorf("tile bounds = %v, want its cell", last.Bounds())
	}
	u0, v0, u1, v1 := last.UVs()
	if u0 != 1 || u1 != 0.5 || v0 != 0.5 || v1 != 1 {
		t.Errorf("UVs = (%v,%v,%v,%v), want flipped (1,0.5,0.5,1)", u0, v0, u1, v1)
	}

	left, right, top, bottom := tm.Bounds()
	if left != 0 || right != 32 || top != 0 || bottom != 32 {
		t.Errorf("Bounds = %v %v %v %v", left, right, top, bottom)
	}

	world := donburi.NewWorld()
	entities := SpawnTileMap(world, tm, 10)
	if len(entities) != 2 {
		t.Fatalf("entities = %d, want 2", len(entities))
	}
	entry := world.Entry(entities[1])
	if !entry.HasComponent(Tile) {
		t.Error("tile entity not tagged")
	}
	if SpriteRender.Get(entry).Layer != 11 {
		t.Errorf("layer = %d, want 11", SpriteRender.Get(entry).Layer)
	}

	tm.Release(textures)
	if textures.refs["textures/tiles.png"] != 0 {
		t.Error("tileset texture not released")
	}
}

func TestLoadTileMapMissingTexture(t *testing.T) {
	data := testMapData()
	data.TilesetImages = append(data.TilesetImages, "textures/gone.png")
	textures := &fakeTextures{refs: map[string]int{}, missing: "textures/gone.png"}

	if _, err := LoadTileMap(&fakeLoader{data: data}, textures, "maps/level.tmx"); err == nil {
		t.Fatal("map with a missing tileset loaded")
	}
	if textures.refs["textures/tiles.png"] != 0 {
		t.Error("acquired tileset not released after failure")
	}
	if _, err := LoadTileMap(&fakeLoader{}, textures, "maps/none.tmx"); err == nil {
		t.Error("missing map loaded")
	}
}
