package renderer

import (
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// FrameRenderer is called between BeginFrame and EndFrame to record draws.
type FrameRenderer func(packet *metadata.RenderPacket) error

// Renderer owns the active backend and drives the per-frame bracket around it.
type Renderer struct {
	backend     GraphicsAPI
	backendType metadata.RendererBackendType
	frameNumber uint64
}

func New(backendType metadata.RendererBackendType, backend GraphicsAPI) (*Renderer, error) {
	if backend == nil {
		err := fmt.Errorf("func renderer.New: %w", core.ErrMissingGraphicsAPI)
		core.LogError("%s", err)
		return nil, err
	}
	return &Renderer{
		backend:     backend,
		backendType: backendType,
	}, nil
}

func (r *Renderer) Initialize(config *metadata.RendererBackendConfig) error {
	if err := r.backend.Initialize(config); err != nil {
		core.LogError("renderer backend '%s' failed to initialize: %s", r.backendType, err)
		return err
	}
	core.LogInfo("renderer backend '%s' initialized", r.backendType)
	return nil
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

// Backend exposes the graphics API to the systems that record draws.
func (r *Renderer) Backend() GraphicsAPI {
	return r.backend
}

func (r *Renderer) BackendType() metadata.RendererBackendType {
	return r.backendType
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

func (r *Renderer) OnResize(width, height uint32) error {
	return r.backend.Resized(width, height)
}

func (r *Renderer) DrawFrame(packet *metadata.RenderPacket, draw FrameRenderer) error {
	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		core.LogError("%s", err)
		return err
	}
	if draw != nil {
		if err := draw(packet); err != nil {
			core.LogError("frame draw failed: %s", err)
			// Close the frame anyway so the backend state stays balanced.
			_ = r.backend.EndFrame(packet.DeltaTime)
			return err
		}
	}
	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return err
	}
	r.frameNumber++
	return nil
}
