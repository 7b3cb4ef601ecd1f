package testbed

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/anima2d/engine"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/scene"
	"github.com/spaghettifunk/anima2d/engine/systems"
	"github.com/yohamta/donburi"
)

const (
	tileSize    = 16
	mapColumns  = 48
	mapRows     = 32
	playerSpeed = 96
	playerLayer = 10
	petRadius   = 20
	petSpeed    = 120

	overworldMap = "overworld"
	hudFont      = "ui"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	world        donburi.World
	renderSystem *scene.RenderSystem

	player donburi.Entity
	pet    donburi.Entity

	// The pet orbits the anchor, which follows the player.
	anchor   *math.Transform
	petOrbit *math.Transform

	tileMap *scene.TileMap
	font    *systems.Font

	camera *components.Camera
	width  uint32
	height uint32

	frameStats systems.RenderStats
}

func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	if config == nil {
		config = engine.DefaultApplicationConfig()
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				world:        donburi.NewWorld(),
				renderSystem: scene.NewRenderSystem(),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	state := g.state()
	ts := g.SystemManager.TextureSystem()

	if err := g.loadMap(); err != nil {
		return err
	}

	hero, err := ts.CreateFromPixels("testbed_hero", tileSize, tileSize, heroPixels())
	if err != nil {
		return err
	}
	sprite := components.NewSprite(hero)
	left, right, top, bottom := state.tileMap.Bounds()
	state.player = scene.SpawnSprite(state.world, sprite, scene.NewTransform((left+right)*0.5, (top+bottom)*0.5), playerLayer)

	state.anchor = math.TransformFromPosition(scene.Transform.Get(state.world.Entry(state.player)).Position)
	state.petOrbit = math.TransformFromPosition(math.NewVec2(petRadius, 0))
	state.petOrbit.SetParent(state.anchor)
	pet := components.NewSprite(hero)
	pet.Colour = math.NewVec4(1, 0.6, 0.9, 1)
	petTransform := scene.NewTransform(0, 0)
	petTransform.Scale = math.NewVec2(0.5, 0.5)
	petTransform.Position = state.petOrbit.WorldPosition()
	state.pet = scene.SpawnSprite(state.world, pet, petTransform, playerLayer-1)

	state.camera = g.SystemManager.CameraSystem().GetDefault()
	state.camera.Follow(scene.NewEntityTarget(state.world, state.player), math.NewVec2Zero())
	state.camera.SetBounds(left, right, top, bottom)

	if font, err := g.SystemManager.FontSystem().Acquire(hudFont); err == nil {
		state.font = font
	} else {
		core.LogWarn("no '%s' font configured, the HUD is hidden", hudFont)
	}
	return nil
}

// loadMap prefers a Tiled map from the asset directory and falls back to a
// generated checkerboard of grass and stone.
func (g *TestGame) loadMap() error {
	state := g.state()
	tm, err := scene.LoadTileMap(g.SystemManager.Assets(), g.SystemManager.TextureSystem(), overworldMap)
	if err == nil {
		state.tileMap = tm
		scene.SpawnTileMap(state.world, tm, 0)
		core.LogInfo("loaded tile map '%s' with %d tiles", overworldMap, len(tm.Tiles))
		return nil
	}
	if !errors.Is(err, core.ErrResourceNotFound) {
		return err
	}

	atlas, err := g.SystemManager.TextureSystem().CreateFromPixels("testbed_tiles", tileSize*2, tileSize, tileAtlasPixels())
	if err != nil {
		return err
	}
	tm = &scene.TileMap{
		Name:   "generated",
		Width:  mapColumns * tileSize,
		Height: mapRows * tileSize,
	}
	for row := 0; row < mapRows; row++ {
		for column := 0; column < mapColumns; column++ {
			sprite := components.NewSprite(atlas)
			variant := 0
			if row == 0 || column == 0 || row == mapRows-1 || column == mapColumns-1 || (row*7+column*3)%23 == 0 {
				variant = 1
			}
			sprite.SetTextureRect(math.NewRect(float32(variant*tileSize), 0, tileSize, tileSize))
			sprite.CenterOrigin()
			sprite.Position = math.NewVec2(float32(column*tileSize+tileSize/2), float32(row*tileSize+tileSize/2))
			tm.Tiles = append(tm.Tiles, scene.TileSprite{Sprite: sprite})
		}
	}
	state.tileMap = tm
	scene.SpawnTileMap(state.world, tm, 0)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	entry := state.world.Entry(state.player)
	transform := scene.Transform.Get(entry)

	direction := math.NewVec2Zero()
	if core.InputIsKeyDown(core.KEY_A) || core.InputIsKeyDown(core.KEY_LEFT) {
		direction.X -= 1
	}
	if core.InputIsKeyDown(core.KEY_D) || core.InputIsKeyDown(core.KEY_RIGHT) {
		direction.X += 1
	}
	if core.InputIsKeyDown(core.KEY_W) || core.InputIsKeyDown(core.KEY_UP) {
		direction.Y -= 1
	}
	if core.InputIsKeyDown(core.KEY_S) || core.InputIsKeyDown(core.KEY_DOWN) {
		direction.Y += 1
	}
	if direction.LengthSquared() > 0 {
		step := direction.Normalize().MulScalar(playerSpeed * float32(deltaTime))
		left, right, top, bottom := state.tileMap.Bounds()
		transform.Position.X = math.Clamp(transform.Position.X+step.X, left, right)
		transform.Position.Y = math.Clamp(transform.Position.Y+step.Y, top, bottom)
		render := scene.SpriteRender.Get(entry)
		render.Sprite.FlipX = direction.X < 0
	}

	state.anchor.SetPosition(transform.Position)
	state.anchor.Rotate(petSpeed * float32(deltaTime))
	scene.Transform.Get(state.world.Entry(state.pet)).Position = state.petOrbit.WorldPosition()

	switch {
	case core.InputIsKeyPressed(core.KEY_SPACE):
		state.camera.Shake(0.4, 6)
	case core.InputIsKeyPressed(core.KEY_PLUS):
		state.camera.ZoomTo(state.camera.GetZoom()*2, 0.5)
	case core.InputIsKeyPressed(core.KEY_MINUS):
		state.camera.ZoomTo(state.camera.GetZoom()*0.5, 0.5)
	case core.InputIsKeyPressed(core.KEY_R):
		state.camera.RotateTo(state.camera.GetRotation()+90, 0.75)
	case core.InputIsKeyPressed(core.KEY_F1):
		core.LogInfo("render stats: %+v", state.frameStats)
	}
	return nil
}

func (g *TestGame) Render(packet *metadata.RenderPacket, deltaTime float64) error {
	state := g.state()
	sr := g.SystemManager.SpriteRenderer()

	state.renderSystem.Draw(state.world, sr)

	if state.font != nil {
		origin := state.camera.ScreenToWorld(math.NewVec2(8, 8))
		fps := 0.0
		if deltaTime > 0 {
			fps = 1 / deltaTime
		}
		text := fmt.Sprintf("fps %.0f  sprites %d  culled %d  draws %d",
			fps, state.frameStats.SpritesDrawn, state.frameStats.SpritesCulled, state.frameStats.DrawCalls)
		size := state.font.MeasureText(text)
		sr.DrawRectangle(math.NewRect(origin.X-4, origin.Y-4, size.X+8, size.Y+8), math.NewVec4(0, 0, 0, 0.6), true)
		sr.DrawText(state.font, text, origin, math.NewVec4One())
	}

	// Stats are complete once End runs, so the HUD shows the previous frame.
	state.frameStats = sr.Stats()
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	if state.tileMap != nil {
		state.tileMap.Release(g.SystemManager.TextureSystem())
	}
	if state.font != nil {
		g.SystemManager.FontSystem().Unload(hudFont)
	}
	return nil
}
