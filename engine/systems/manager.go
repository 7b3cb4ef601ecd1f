package systems

import (
	"runtime"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

type SystemManagerConfig struct {
	ViewportWidth  int32
	ViewportHeight int32
	// JobWorkers defaults to the number of CPUs minus one, at least one.
	JobWorkers      int
	JobQueueSize    int
	MaxTextureCount uint32
	MaxShaderCount  uint16
	MaxCameraCount  uint16
	MaxFontCount    uint8
	TextureFilter   metadata.TextureFilter
	Fonts           []*metadata.BitmapFontConfig
}

func (c *SystemManagerConfig) applyDefaults() {
	if c.JobWorkers <= 0 {
		c.JobWorkers = max(1, runtime.NumCPU()-1)
	}
	if c.JobQueueSize <= 0 {
		c.JobQueueSize = 256
	}
	if c.MaxTextureCount == 0 {
		c.MaxTextureCount = 1024
	}
	if c.MaxShaderCount == 0 {
		c.MaxShaderCount = 64
	}
	if c.MaxCameraCount == 0 {
		c.MaxCameraCount = 16
	}
	if c.MaxFontCount == 0 {
		c.MaxFontCount = 16
	}
}

type SystemManager struct {
	assets         AssetLoader
	jobSystem      *JobSystem
	textureSystem  *TextureSystem
	shaderSystem   *ShaderSystem
	cameraSystem   *CameraSystem
	fontSystem     *FontSystem
	spriteRenderer *SpriteRenderer
}

// NewSystemManager constructs every system in dependency order. Nothing
// touches the graphics API until Initialize.
func NewSystemManager(config SystemManagerConfig, graphics renderer.GraphicsAPI, am AssetLoader) (*SystemManager, error) {
	config.applyDefaults()

	js, err := NewJobSystem(config.JobWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: config.MaxTextureCount,
		Filter:          config.TextureFilter,
	}, js, am, graphics)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: config.MaxShaderCount,
	}, am, graphics)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: config.MaxCameraCount,
		ViewportWidth:  config.ViewportWidth,
		ViewportHeight: config.ViewportHeight,
	})
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	fs, err := NewFontSystem(&metadata.FontSystemConfig{
		BitmapFontConfigs:  config.Fonts,
		MaxBitmapFontCount: config.MaxFontCount,
		AutoRelease:        true,
	}, ts, am)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	sr := NewSpriteRenderer(SpriteRendererConfig{
		ViewportWidth:  config.ViewportWidth,
		ViewportHeight: config.ViewportHeight,
	}, graphics, ssys)

	return &SystemManager{
		assets:         am,
		jobSystem:      js,
		textureSystem:  ts,
		shaderSystem:   ssys,
		cameraSystem:   cs,
		fontSystem:     fs,
		spriteRenderer: sr,
	}, nil
}

// Initialize creates GPU resources. It must run after the graphics backend
// is initialized.
func (sm *SystemManager) Initialize() error {
	if err := sm.textureSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.shaderSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.fontSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.spriteRenderer.Initialize(); err != nil {
		return err
	}
	sm.spriteRenderer.SetCamera(sm.cameraSystem.GetDefault())
	core.LogInfo("systems initialized")
	return nil
}

// Update uploads finished texture loads and advances the cameras.
func (sm *SystemManager) Update(deltaTime float64) {
	sm.textureSystem.Update()
	sm.cameraSystem.Update(float32(deltaTime))
}

func (sm *SystemManager) OnResize(width, height uint32) {
	sm.cameraSystem.OnResize(int32(width), int32(height))
}

func (sm *SystemManager) Shutdown() error {
	// Workers may still hand decoded images to the texture system.
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.spriteRenderer.Shutdown(); err != nil {
		return err
	}
	if err := sm.fontSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.cameraSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.shaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.textureSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}

// Assets is the loader every system reads resources through.
func (sm *SystemManager) Assets() AssetLoader {
	return sm.assets
}

func (sm *SystemManager) JobSystem() *JobSystem {
	return sm.jobSystem
}

func (sm *SystemManager) TextureSystem() *TextureSystem {
	return sm.textureSystem
}

func (sm *SystemManager) ShaderSystem() *ShaderSystem {
	return sm.shaderSystem
}

func (sm *SystemManager) CameraSystem() *CameraSystem {
	return sm.cameraSystem
}

func (sm *SystemManager) FontSystem() *FontSystem {
	return sm.fontSystem
}

func (sm *SystemManager) SpriteRenderer() *SpriteRenderer {
	return sm.spriteRenderer
}
