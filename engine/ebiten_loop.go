package engine

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spaghettifunk/anima2d/engine/core"
)

// ebitenGame adapts the engine frame to ebiten's Update/Draw/Layout cycle.
// Update advances the simulation at ebiten's tick rate; Draw renders into
// the screen image ebiten hands over.
type ebitenGame struct {
	engine *Engine
}

func (g *ebitenGame) Update() error {
	e := g.engine
	e.input.Poll()
	if !e.isRunning {
		return ebiten.Termination
	}
	if e.isSuspended {
		return nil
	}

	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime

	if err := e.update(delta); err != nil {
		core.LogError("Game update failed, shutting down: %s", err)
		return err
	}
	core.InputUpdate(delta)
	e.lastTime = currentTime
	return nil
}

func (g *ebitenGame) Draw(screen *ebiten.Image) {
	e := g.engine
	if e.isSuspended {
		return
	}
	e.clock.Update()
	start := e.clock.Elapsed()

	e.ebiten.SetTarget(screen)
	if err := e.render(1 / float64(ebiten.TPS())); err != nil {
		core.LogError("Game render failed, shutting down: %s", err)
		e.isRunning = false
		return
	}

	e.clock.Update()
	e.metrics.Update(e.clock.Elapsed() - start)
}

// Layout keeps the screen at the window size and reports changes the same
// way the glfw framebuffer callback does.
func (g *ebitenGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	e := g.engine
	if uint32(outsideWidth) != e.width || uint32(outsideHeight) != e.height {
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.SystemEvent{
				WindowWidth:  uint32(outsideWidth),
				WindowHeight: uint32(outsideHeight),
			},
		})
	}
	return outsideWidth, outsideHeight
}
