package engine

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spaghettifunk/anima2d/engine/assets"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/platform"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/ebitengine"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/renderer/opengl"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     bool
	isSuspended   bool
	platform      *platform.Platform
	ebiten        *ebitengine.EbitenRenderer
	input         *ebitengine.InputPoller
	renderer      *renderer.Renderer
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.FrameMetrics
	lastTime      float64
}

// New validates the game configuration and builds the backend it names.
// Nothing touches the window or the GPU until Initialize.
func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("game has no application config: %w", core.ErrInvalidConfiguration)
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	core.SetLogLevel(config.Level())

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		isRunning:    true,
		isSuspended:  false,
		width:        config.StartWidth,
		height:       config.StartHeight,
	}

	var graphics renderer.GraphicsAPI
	switch config.Backend {
	case metadata.RendererBackendOpenGL:
		e.platform = platform.New()
		graphics = opengl.New(e.platform)
	case metadata.RendererBackendEbiten:
		e.ebiten = ebitengine.New()
		e.input = ebitengine.NewInputPoller()
		graphics = e.ebiten
	}

	r, err := renderer.New(config.Backend, graphics)
	if err != nil {
		return nil, err
	}
	e.renderer = r

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	e.assetManager = am

	filter, _ := config.Filter()
	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		ViewportWidth:  int32(config.StartWidth),
		ViewportHeight: int32(config.StartHeight),
		JobWorkers:     config.JobWorkers,
		TextureFilter:  filter,
		Fonts:          config.BitmapFonts(),
	}, graphics, am)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	e.systemManager = sm
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig

	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	if e.platform != nil {
		if err := e.platform.Startup(platform.WindowConfig{
			Title:  config.Name,
			X:      config.StartPosX,
			Y:      config.StartPosY,
			Width:  config.StartWidth,
			Height: config.StartHeight,
			VSync:  config.VSync,
		}); err != nil {
			return err
		}
	} else {
		ebiten.SetWindowTitle(config.Name)
		ebiten.SetWindowSize(int(config.StartWidth), int(config.StartHeight))
		ebiten.SetWindowPosition(int(config.StartPosX), int(config.StartPosY))
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if err := e.renderer.Initialize(&metadata.RendererBackendConfig{
		ApplicationName: config.Name,
		Width:           config.StartWidth,
		Height:          config.StartHeight,
		ClearColour:     config.Clear(),
		VSync:           config.VSync,
	}); err != nil {
		return err
	}

	// initialize subsystems
	if err := e.assetManager.Initialize(config.AssetDir); err != nil {
		return err
	}
	if err := e.systemManager.Initialize(); err != nil {
		return err
	}

	camera := e.systemManager.CameraSystem().GetDefault()
	camera.SetZoom(config.Camera.Zoom)
	camera.SetPosition(config.Camera.X, config.Camera.Y)

	e.gameInstance.SystemManager = e.systemManager
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run blocks until the application quits. The OpenGL backend drives its own
// loop on the main thread; the ebiten backend hands the loop to ebiten.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine run before initialize: %w", core.ErrSystemNotInitialized)
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	if e.ebiten != nil {
		err := ebiten.RunGame(&ebitenGame{engine: e})
		if errors.Is(err, ebiten.Termination) {
			return nil
		}
		return err
	}

	var targetFrameSeconds float64 = 1.0 / 60.0

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
		}

		if !e.isSuspended {
			// Update clock and get delta time.
			e.clock.Update()

			var currentTime float64 = e.clock.Elapsed()
			var delta float64 = (currentTime - e.lastTime)
			var frameStartTime float64 = platform.GetAbsoluteTime()

			if err := e.update(delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				e.isRunning = false
				break
			}
			if err := e.render(delta); err != nil {
				core.LogError("Game render failed, shutting down: %s", err)
				e.isRunning = false
				break
			}

			// Figure out how long the frame took
			var frameElapsedTime float64 = platform.GetAbsoluteTime() - frameStartTime
			e.metrics.Update(frameElapsedTime)
			if remaining := targetFrameSeconds - frameElapsedTime; remaining > 0 && !e.gameInstance.ApplicationConfig.VSync {
				platform.Sleep(remaining)
			}

			// NOTE: Input update/state copying should always be handled
			// after any input should be recorded; I.E. before this line.
			// As a safety, input is the last thing to be updated before
			// this frame ends.
			core.InputUpdate(delta)

			// Update last time
			e.lastTime = currentTime
		}
	}

	return nil
}

func (e *Engine) update(delta float64) error {
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return err
		}
	}
	e.systemManager.Update(delta)
	return nil
}

// render brackets the game's draw calls with the sprite renderer so every
// sprite submitted in FnRender lands in this frame.
func (e *Engine) render(delta float64) error {
	packet := &metadata.RenderPacket{DeltaTime: delta}
	sr := e.systemManager.SpriteRenderer()
	return e.renderer.DrawFrame(packet, func(p *metadata.RenderPacket) error {
		sr.Begin()
		var err error
		if e.gameInstance.FnRender != nil {
			err = e.gameInstance.FnRender(p, delta)
		}
		sr.End()
		return err
	})
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	if err := e.renderer.Shutdown(); err != nil {
		return err
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	if e.platform != nil {
		if err := e.platform.Shutdown(); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageUninitialized
	return nil
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

// Metrics returns the FPS and the averaged frame time in milliseconds.
func (e *Engine) Metrics() (float64, float64) {
	return e.metrics.Frame()
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	if context.Type == core.EVENT_CODE_KEY_PRESSED && ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		// Block anything else from processing this.
		return true
	}
	core.LogDebug("key %#x event %d", ke.KeyCode, context.Type)
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	width, height := se.WindowWidth, se.WindowHeight
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("window resize: %dx%d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming application.")
		e.isSuspended = false
	}

	if err := e.renderer.OnResize(width, height); err != nil {
		core.LogError("renderer resize failed: %s", err)
	}
	e.systemManager.OnResize(width, height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("game resize failed: %s", err)
		}
	}
	// Other listeners may need the event too.
	return false
}
