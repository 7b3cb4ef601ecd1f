package metadata

import "github.com/spaghettifunk/anima2d/engine/math"

/** @brief Handle to a GPU object. Zero is always invalid. */
type Handle uint32

const InvalidHandle Handle = 0

// IsValid reports a non-zero handle.
func (h Handle) IsValid() bool {
	return h != InvalidHandle
}

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief Initial framebuffer size in pixels. */
	Width  uint32
	Height uint32
	/** @brief Colour used to clear the frame in BeginFrame. */
	ClearColour math.Vec4
	VSync       bool
}

/** @brief The graphics backends known to the engine. */
type RendererBackendType string

const (
	RendererBackendOpenGL RendererBackendType = "opengl"
	RendererBackendEbiten RendererBackendType = "ebiten"
)

/** @brief How the source colour is combined with the framebuffer. */
type BlendMode int

const (
	BlendModeNone BlendMode = iota
	BlendModeAlpha
	BlendModeAdditive
	BlendModeMultiply
)

func (b BlendMode) String() string {
	switch b {
	case BlendModeNone:
		return "none"
	case BlendModeAlpha:
		return "alpha"
	case BlendModeAdditive:
		return "additive"
	case BlendModeMultiply:
		return "multiply"
	}
	return "unknown"
}

type PrimitiveType int

const (
	PrimitiveTriangles PrimitiveType = iota
	PrimitiveTriangleStrip
	PrimitiveLines
)

/** @brief The element type of an index buffer. */
type IndexType int

const (
	IndexTypeUint16 IndexType = iota
	IndexTypeUint32
)

// Size returns the byte size of one index.
func (i IndexType) Size() int {
	if i == IndexTypeUint32 {
		return 4
	}
	return 2
}

/** @brief Hint passed to buffer creation. */
type BufferUsage int

const (
	BufferUsageStatic BufferUsage = iota
	BufferUsageDynamic
)

/**
 * @brief One entry of an interleaved vertex layout. Offset and Stride are
 * expressed in bytes, Components in float32 units.
 */
type VertexAttribute struct {
	Location   uint32
	Components int32
	Stride     int32
	Offset     int
	Normalized bool
}

/**
 * @brief A structure which is generated by the application and sent once
 * to the renderer to render a given frame.
 */
type RenderPacket struct {
	DeltaTime float64
}
