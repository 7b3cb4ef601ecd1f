package ebitengine

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// Attribute locations the backend reads from the bound vertex layout. They
// match the sprite shader, the only program this backend can emulate.
const (
	positionLocation = 0
	colourLocation   = 1
	texcoordLocation = 2
)

type vertexArray struct {
	vbo    metadata.Handle
	ibo    metadata.Handle
	layout []metadata.VertexAttribute
}

type program struct {
	mat4s map[string]math.Mat4
	ints  map[string]int32
}

// EbitenRenderer implements renderer.GraphicsAPI on top of ebiten. Buffers
// live on the CPU; DrawElements runs the sprite vertex stage in Go and
// hands the result to DrawTriangles on the frame target.
type EbitenRenderer struct {
	FrameNumber uint64

	target      *ebiten.Image
	clearColour math.Vec4
	width       int
	height      int

	nextHandle metadata.Handle
	vertices   map[metadata.Handle][]float32
	indices    map[metadata.Handle][]uint16
	arrays     map[metadata.Handle]*vertexArray
	textures   map[metadata.Handle]*ebiten.Image
	programs   map[metadata.Handle]*program

	boundArray   metadata.Handle
	boundTexture metadata.Handle
	boundProgram metadata.Handle
	blend        metadata.BlendMode

	scratch []ebiten.Vertex
}

var _ renderer.GraphicsAPI = (*EbitenRenderer)(nil)

func New() *EbitenRenderer {
	return &EbitenRenderer{
		vertices: make(map[metadata.Handle][]float32),
		indices:  make(map[metadata.Handle][]uint16),
		arrays:   make(map[metadata.Handle]*vertexArray),
		textures: make(map[metadata.Handle]*ebiten.Image),
		programs: make(map[metadata.Handle]*program),
		blend:    metadata.BlendModeAlpha,
	}
}

// SetTarget points the next frame at screen. Called from ebiten's Draw.
func (r *EbitenRenderer) SetTarget(screen *ebiten.Image) {
	r.target = screen
	if screen != nil {
		b := screen.Bounds()
		r.width, r.height = b.Dx(), b.Dy()
	}
}

func (r *EbitenRenderer) Initialize(config *metadata.RendererBackendConfig) error {
	r.clearColour = config.ClearColour
	r.width, r.height = int(config.Width), int(config.Height)
	ebiten.SetVsyncEnabled(config.VSync)
	return nil
}

func (r *EbitenRenderer) Shutdown() error {
	for handle, img := range r.textures {
		img.Deallocate()
		delete(r.textures, handle)
	}
	clear(r.vertices)
	clear(r.indices)
	clear(r.arrays)
	clear(r.programs)
	return nil
}

func (r *EbitenRenderer) Resized(width, height uint32) error {
	r.width, r.height = int(width), int(height)
	return nil
}

func (r *EbitenRenderer) BeginFrame(deltaTime float64) error {
	if r.target == nil {
		return fmt.Errorf("ebiten frame started without a target: %w", core.ErrSystemNotInitialized)
	}
	r.target.Fill(toColor(r.clearColour))
	return nil
}

func (r *EbitenRenderer) EndFrame(deltaTime float64) error {
	// ebiten presents the screen itself once Draw returns.
	r.target = nil
	r.FrameNumber++
	return nil
}

func (r *EbitenRenderer) newHandle() metadata.Handle {
	r.nextHandle++
	return r.nextHandle
}

func (r *EbitenRenderer) CreateVertexBuffer(data []float32, size int, usage metadata.BufferUsage) metadata.Handle {
	h := r.newHandle()
	buf := make([]float32, len(data), max(len(data), size/4))
	copy(buf, data)
	r.vertices[h] = buf
	return h
}

func (r *EbitenRenderer) UpdateVertexBuffer(handle metadata.Handle, data []float32) {
	buf, ok := r.vertices[handle]
	if !ok {
		core.LogWarn("update of unknown vertex buffer %d", handle)
		return
	}
	r.vertices[handle] = append(buf[:0], data...)
}

func (r *EbitenRenderer) CreateIndexBuffer(data []uint16, size int, usage metadata.BufferUsage) metadata.Handle {
	h := r.newHandle()
	buf := make([]uint16, len(data), max(len(data), size/2))
	copy(buf, data)
	r.indices[h] = buf
	return h
}

func (r *EbitenRenderer) UpdateIndexBuffer(handle metadata.Handle, data []uint16) {
	buf, ok := r.indices[handle]
	if !ok {
		core.LogWarn("update of unknown index buffer %d", handle)
		return
	}
	r.indices[handle] = append(buf[:0], data...)
}

func (r *EbitenRenderer) DeleteBuffer(handle metadata.Handle) {
	delete(r.vertices, handle)
	delete(r.indices, handle)
}

func (r *EbitenRenderer) CreateVertexArray(vbo, ibo metadata.Handle, layout []metadata.VertexAttribute) metadata.Handle {
	if _, ok := r.vertices[vbo]; !ok {
		core.LogError("vertex array needs a vertex buffer, got handle %d", vbo)
		return metadata.InvalidHandle
	}
	h := r.newHandle()
	r.arrays[h] = &vertexArray{vbo: vbo, ibo: ibo, layout: append([]metadata.VertexAttribute(nil), layout...)}
	return h
}

func (r *EbitenRenderer) BindVertexArray(handle metadata.Handle) { r.boundArray = handle }

func (r *EbitenRenderer) DeleteVertexArray(handle metadata.Handle) {
	delete(r.arrays, handle)
	if r.boundArray == handle {
		r.boundArray = metadata.InvalidHandle
	}
}

func (r *EbitenRenderer) CreateTexture(config metadata.TextureConfig, pixels []uint8) metadata.Handle {
	if config.Width == 0 || config.Height == 0 {
		return metadata.InvalidHandle
	}
	if pixels != nil && len(pixels) != int(config.Width*config.Height*4) {
		core.LogError("texture upload expects %d bytes, got %d", config.Width*config.Height*4, len(pixels))
		return metadata.InvalidHandle
	}
	img := ebiten.NewImage(int(config.Width), int(config.Height))
	if len(pixels) > 0 {
		img.WritePixels(premultiply(pixels))
	}
	h := r.newHandle()
	r.textures[h] = img
	return h
}

func (r *EbitenRenderer) BindTexture(handle metadata.Handle, unit uint32) {
	if unit != 0 {
		core.LogWarn("ebiten backend only samples texture unit 0")
		return
	}
	r.boundTexture = handle
}

func (r *EbitenRenderer) DeleteTexture(handle metadata.Handle) {
	if img, ok := r.textures[handle]; ok {
		img.Deallocate()
		delete(r.textures, handle)
	}
}

// CreateShader records uniforms only. The GLSL is not compiled; draws always
// run the fixed sprite vertex stage.
func (r *EbitenRenderer) CreateShader(vertexSource, fragmentSource string) (metadata.Handle, error) {
	if vertexSource == "" || fragmentSource == "" {
		return metadata.InvalidHandle, fmt.Errorf("empty shader source: %w", core.ErrShaderCompilation)
	}
	h := r.newHandle()
	r.programs[h] = &program{
		mat4s: make(map[string]math.Mat4),
		ints:  make(map[string]int32),
	}
	return h, nil
}

func (r *EbitenRenderer) UseShader(handle metadata.Handle) { r.boundProgram = handle }

func (r *EbitenRenderer) DeleteShader(handle metadata.Handle) {
	delete(r.programs, handle)
	if r.boundProgram == handle {
		r.boundProgram = metadata.InvalidHandle
	}
}

func (r *EbitenRenderer) SetUniformMat4(shader metadata.Handle, name string, value math.Mat4) {
	if p, ok := r.programs[shader]; ok {
		p.mat4s[name] = value
	}
}

func (r *EbitenRenderer) SetUniformInt(shader metadata.Handle, name string, value int32) {
	if p, ok := r.programs[shader]; ok {
		p.ints[name] = value
	}
}

func (r *EbitenRenderer) SetBlendMode(mode metadata.BlendMode) { r.blend = mode }

func (r *EbitenRenderer) DrawElements(primitive metadata.PrimitiveType, count int32, indexType metadata.IndexType, offset int) {
	if r.target == nil || count <= 0 {
		return
	}
	if primitive != metadata.PrimitiveTriangles || indexType != metadata.IndexTypeUint16 {
		core.LogWarn("ebiten backend draws uint16 triangle lists only")
		return
	}
	va, ok := r.arrays[r.boundArray]
	if !ok {
		core.LogWarn("draw without a vertex array")
		return
	}
	img, ok := r.textures[r.boundTexture]
	if !ok {
		core.LogWarn("draw without a texture")
		return
	}
	prog, ok := r.programs[r.boundProgram]
	if !ok {
		core.LogWarn("draw without a shader")
		return
	}

	first := offset / indexType.Size()
	indices := r.indices[va.ibo]
	if first+int(count) > len(indices) {
		core.LogWarn("draw reads past the index buffer")
		return
	}

	mvp := prog.mat4s[metadata.UNIFORM_VIEW].Mul(prog.mat4s[metadata.UNIFORM_PROJECTION])
	b := img.Bounds()
	r.scratch = projectVertices(r.scratch[:0], r.vertices[va.vbo], va.layout, mvp,
		float32(r.width), float32(r.height), float32(b.Dx()), float32(b.Dy()))

	var op ebiten.DrawTrianglesOptions
	op.Blend = ebitenBlend(r.blend)
	op.ColorScaleMode = ebiten.ColorScaleModeStraightAlpha
	r.target.DrawTriangles(r.scratch, indices[first:first+int(count)], img, &op)
}
