package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
)

type CameraSystem struct {
	Config  *CameraSystemConfig
	Cameras map[string]*components.CameraLookup
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera

	nextID uint16
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of cameras that can be managed by
	 * the system.
	 */
	MaxCameraCount uint16
	/** @brief Initial viewport size for every camera, in pixels. */
	ViewportWidth  int32
	ViewportHeight int32
}

/**
 * @brief Initializes the camera system.
 *
 * @param config The configuration for this system.
 * @return The system, or an error if the configuration is invalid.
 */
func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config == nil || config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0: %w", core.ErrInvalidConfiguration)
		core.LogError("%s", err)
		return nil, err
	}
	cs := &CameraSystem{
		Config:  config,
		Cameras: make(map[string]*components.CameraLookup, config.MaxCameraCount),
	}
	// Setup default camera.
	cs.DefaultCamera = components.NewCamera(config.ViewportWidth, config.ViewportHeight)
	return cs, nil
}

/**
 * @brief Shuts down the camera system.
 */
func (cs *CameraSystem) Shutdown() error {
	cs.Cameras = make(map[string]*components.CameraLookup)
	return nil
}

/**
 * @brief Acquires a pointer to a camera by name.
 * If one is not found, a new one is created and retuned.
 * Internal reference counter is incremented.
 *
 * @param name The name of the camera to acquire.
 * @return A pointer to a camera, or an error if no slot is free.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}

	lookup, ok := cs.Cameras[name]
	if !ok {
		if len(cs.Cameras) >= int(cs.Config.MaxCameraCount) {
			err := fmt.Errorf("func CameraSystemAcquire failed to acquire new slot. Adjust camera system config to allow more: %w", core.ErrInvalidConfiguration)
			core.LogError("%s", err)
			return nil, err
		}

		// Create/register the new camera.
		core.LogDebug("Creating new camera named '%s'...", name)
		cs.nextID++
		lookup = &components.CameraLookup{
			ID:     cs.nextID,
			Camera: components.NewCamera(cs.DefaultCamera.GetViewportSize()),
		}
		cs.Cameras[name] = lookup
	}
	lookup.ReferenceCount++
	return lookup.Camera, nil
}

/**
 * @brief Releases a camera with the given name. Internal reference
 * counter is decremented. If this reaches 0, the camera is reset and
 * dropped from the system.
 *
 * @param name The name of the camera to release.
 */
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return
	}
	lookup, ok := cs.Cameras[name]
	if !ok {
		core.LogWarn("CameraSystemRelease failed lookup for '%s'. Nothing was done.", name)
		return
	}
	lookup.ReferenceCount--
	if lookup.ReferenceCount < 1 {
		lookup.Camera.Reset()
		delete(cs.Cameras, name)
	}
}

/**
 * @brief Gets a pointer to the default camera.
 *
 * @return A pointer to the default camera.
 */
func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}

// Update advances effects and follow on the default and every acquired camera.
func (cs *CameraSystem) Update(deltaTime float32) {
	cs.DefaultCamera.Update(deltaTime)
	for _, lookup := range cs.Cameras {
		lookup.Camera.Update(deltaTime)
	}
}

// OnResize applies a new viewport size to every camera.
func (cs *CameraSystem) OnResize(width, height int32) {
	cs.DefaultCamera.SetViewportSize(width, height)
	for _, lookup := range cs.Cameras {
		lookup.Camera.SetViewportSize(width, height)
	}
}
