package renderer

import (
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// GraphicsAPI is the handle-based surface every graphics backend exposes.
// Handles are opaque and metadata.InvalidHandle (0) marks a failed creation.
// Calls are only valid on the thread that owns the graphics context.
type GraphicsAPI interface {
	Initialize(config *metadata.RendererBackendConfig) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	// CreateVertexBuffer allocates size bytes and uploads data (which may be nil).
	CreateVertexBuffer(data []float32, size int, usage metadata.BufferUsage) metadata.Handle
	UpdateVertexBuffer(handle metadata.Handle, data []float32)
	CreateIndexBuffer(data []uint16, size int, usage metadata.BufferUsage) metadata.Handle
	UpdateIndexBuffer(handle metadata.Handle, data []uint16)
	DeleteBuffer(handle metadata.Handle)

	CreateVertexArray(vbo, ibo metadata.Handle, layout []metadata.VertexAttribute) metadata.Handle
	BindVertexArray(handle metadata.Handle)
	DeleteVertexArray(handle metadata.Handle)

	CreateTexture(config metadata.TextureConfig, pixels []uint8) metadata.Handle
	BindTexture(handle metadata.Handle, unit uint32)
	DeleteTexture(handle metadata.Handle)

	CreateShader(vertexSource, fragmentSource string) (metadata.Handle, error)
	UseShader(handle metadata.Handle)
	DeleteShader(handle metadata.Handle)
	SetUniformMat4(shader metadata.Handle, name string, value math.Mat4)
	SetUniformInt(shader metadata.Handle, name string, value int32)

	SetBlendMode(mode metadata.BlendMode)
	DrawElements(primitive metadata.PrimitiveType, count int32, indexType metadata.IndexType, offset int)
}
