package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// Surface is the window side of the context: it owns the swap chain.
type Surface interface {
	MakeContextCurrent()
	SwapBuffers()
	FramebufferSize() (int, int)
}

type objectKind uint8

const (
	kindBuffer objectKind = iota
	kindVertexArray
	kindTexture
	kindProgram
)

type glObject struct {
	kind objectKind
	name uint32
	// byte size for buffers, used to grow on update
	size int
}

// OpenGLRenderer implements renderer.GraphicsAPI on a 4.1 core context.
// Engine handles map onto GL names through objects, so buffers and textures
// never share a handle even when GL hands out the same name.
type OpenGLRenderer struct {
	surface     Surface
	FrameNumber uint64

	objects    map[metadata.Handle]*glObject
	nextHandle metadata.Handle
	// uniform locations per program handle
	uniforms map[metadata.Handle]map[string]int32

	clearColour math.Vec4
	width       int32
	height      int32
	blend       metadata.BlendMode
}

var _ renderer.GraphicsAPI = (*OpenGLRenderer)(nil)

func New(surface Surface) *OpenGLRenderer {
	return &OpenGLRenderer{
		surface:  surface,
		objects:  make(map[metadata.Handle]*glObject),
		uniforms: make(map[metadata.Handle]map[string]int32),
		blend:    metadata.BlendModeNone,
	}
}

func (r *OpenGLRenderer) Initialize(config *metadata.RendererBackendConfig) error {
	if r.surface != nil {
		r.surface.MakeContextCurrent()
	}
	if err := gl.Init(); err != nil {
		core.LogError("failed to load OpenGL functions: %s", err)
		return err
	}
	core.LogInfo("OpenGL %s (%s)", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	r.clearColour = config.ClearColour
	r.width, r.height = int32(config.Width), int32(config.Height)
	if r.surface != nil {
		w, h := r.surface.FramebufferSize()
		r.width, r.height = int32(w), int32(h)
	}
	gl.Viewport(0, 0, r.width, r.height)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	r.SetBlendMode(metadata.BlendModeAlpha)
	return nil
}

// Shutdown deletes whatever the systems did not release themselves.
func (r *OpenGLRenderer) Shutdown() error {
	for handle := range r.objects {
		r.deleteObject(handle)
	}
	return nil
}

func (r *OpenGLRenderer) Resized(width, height uint32) error {
	r.width, r.height = int32(width), int32(height)
	gl.Viewport(0, 0, r.width, r.height)
	return nil
}

func (r *OpenGLRenderer) BeginFrame(deltaTime float64) error {
	if r.width == 0 || r.height == 0 {
		return nil
	}
	gl.ClearColor(r.clearColour.X, r.clearColour.Y, r.clearColour.Z, r.clearColour.W)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	return nil
}

func (r *OpenGLRenderer) EndFrame(deltaTime float64) error {
	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		core.LogWarn("OpenGL error 0x%x in frame %d", errCode, r.FrameNumber)
	}
	if r.surface != nil {
		r.surface.SwapBuffers()
	}
	r.FrameNumber++
	return nil
}

func (r *OpenGLRenderer) register(kind objectKind, name uint32, size int) metadata.Handle {
	if name == 0 {
		return metadata.InvalidHandle
	}
	r.nextHandle++
	r.objects[r.nextHandle] = &glObject{kind: kind, name: name, size: size}
	return r.nextHandle
}

func (r *OpenGLRenderer) lookup(handle metadata.Handle, kind objectKind) (*glObject, bool) {
	obj, ok := r.objects[handle]
	if !ok || obj.kind != kind {
		return nil, false
	}
	return obj, true
}

func (r *OpenGLRenderer) deleteObject(handle metadata.Handle) {
	obj, ok := r.objects[handle]
	if !ok {
		return
	}
	switch obj.kind {
	case kindBuffer:
		gl.DeleteBuffers(1, &obj.name)
	case kindVertexArray:
		gl.DeleteVertexArrays(1, &obj.name)
	case kindTexture:
		gl.DeleteTextures(1, &obj.name)
	case kindProgram:
		gl.DeleteProgram(obj.name)
		delete(r.uniforms, handle)
	}
	delete(r.objects, handle)
}

func bufferUsage(usage metadata.BufferUsage) uint32 {
	if usage == metadata.BufferUsageDynamic {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

// createBuffer uploads through COPY_WRITE_BUFFER so the element binding of
// whatever vertex array is bound stays untouched. data is nil or a non-empty slice.
func (r *OpenGLRenderer) createBuffer(size int, data interface{}, usage metadata.BufferUsage) metadata.Handle {
	var name uint32
	gl.GenBuffers(1, &name)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, name)
	if data != nil {
		gl.BufferData(gl.COPY_WRITE_BUFFER, size, gl.Ptr(data), bufferUsage(usage))
	} else {
		gl.BufferData(gl.COPY_WRITE_BUFFER, size, nil, bufferUsage(usage))
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	return r.register(kindBuffer, name, size)
}

func (r *OpenGLRenderer) CreateVertexBuffer(data []float32, size int, usage metadata.BufferUsage) metadata.Handle {
	if len(data) == 0 {
		return r.createBuffer(size, nil, usage)
	}
	return r.createBuffer(max(size, len(data)*4), data, usage)
}

func (r *OpenGLRenderer) CreateIndexBuffer(data []uint16, size int, usage metadata.BufferUsage) metadata.Handle {
	if len(data) == 0 {
		return r.createBuffer(size, nil, usage)
	}
	return r.createBuffer(max(size, len(data)*2), data, usage)
}

func (r *OpenGLRenderer) updateBuffer(handle metadata.Handle, byteSize int, data interface{}) {
	obj, ok := r.lookup(handle, kindBuffer)
	if !ok {
		core.LogWarn("update of unknown buffer %d", handle)
		return
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, obj.name)
	if byteSize > obj.size {
		gl.BufferData(gl.COPY_WRITE_BUFFER, byteSize, gl.Ptr(data), gl.DYNAMIC_DRAW)
		obj.size = byteSize
	} else {
		gl.BufferSubData(gl.COPY_WRITE_BUFFER, 0, byteSize, gl.Ptr(data))
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

func (r *OpenGLRenderer) UpdateVertexBuffer(handle metadata.Handle, data []float32) {
	if len(data) == 0 {
		return
	}
	r.updateBuffer(handle, len(data)*4, data)
}

func (r *OpenGLRenderer) UpdateIndexBuffer(handle metadata.Handle, data []uint16) {
	if len(data) == 0 {
		return
	}
	r.updateBuffer(handle, len(data)*2, data)
}

func (r *OpenGLRenderer) DeleteBuffer(handle metadata.Handle) {
	if _, ok := r.lookup(handle, kindBuffer); ok {
		r.deleteObject(handle)
	}
}

func (r *OpenGLRenderer) CreateVertexArray(vbo, ibo metadata.Handle, layout []metadata.VertexAttribute) metadata.Handle {
	vb, ok := r.lookup(vbo, kindBuffer)
	if !ok {
		core.LogError("vertex array needs a vertex buffer, got handle %d", vbo)
		return metadata.InvalidHandle
	}

	var name uint32
	gl.GenVertexArrays(1, &name)
	gl.BindVertexArray(name)
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.name)
	if ib, ok := r.lookup(ibo, kindBuffer); ok {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.name)
	}
	for _, attr := range layout {
		gl.VertexAttribPointerWithOffset(attr.Location, attr.Components, gl.FLOAT, attr.Normalized, attr.Stride, uintptr(attr.Offset))
		gl.EnableVertexAttribArray(attr.Location)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return r.register(kindVertexArray, name, 0)
}

func (r *OpenGLRenderer) BindVertexArray(handle metadata.Handle) {
	if handle == metadata.InvalidHandle {
		gl.BindVertexArray(0)
		return
	}
	if obj, ok := r.lookup(handle, kindVertexArray); ok {
		gl.BindVertexArray(obj.name)
	}
}

func (r *OpenGLRenderer) DeleteVertexArray(handle metadata.Handle) {
	if _, ok := r.lookup(handle, kindVertexArray); ok {
		r.deleteObject(handle)
	}
}

func textureFilter(filter metadata.TextureFilter) int32 {
	if filter == metadata.TextureFilterModeLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func textureRepeat(repeat metadata.TextureRepeat) int32 {
	switch repeat {
	case metadata.TextureRepeatRepeat:
		return gl.REPEAT
	case metadata.TextureRepeatMirroredRepeat:
		return gl.MIRRORED_REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func (r *OpenGLRenderer) CreateTexture(config metadata.TextureConfig, pixels []uint8) metadata.Handle {
	if config.Width == 0 || config.Height == 0 {
		return metadata.InvalidHandle
	}
	if pixels != nil && len(pixels) < int(config.Width*config.Height*4) {
		core.LogError("texture upload expects %d bytes, got %d", config.Width*config.Height*4, len(pixels))
		return metadata.InvalidHandle
	}

	var name uint32
	gl.GenTextures(1, &name)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, name)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, textureFilter(config.Filter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, textureFilter(config.Filter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, textureRepeat(config.Repeat))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, textureRepeat(config.Repeat))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	if len(pixels) > 0 {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(config.Width), int32(config.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	} else {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(config.Width), int32(config.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return r.register(kindTexture, name, 0)
}

func (r *OpenGLRenderer) BindTexture(handle metadata.Handle, unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	obj, ok := r.lookup(handle, kindTexture)
	if !ok {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, obj.name)
}

func (r *OpenGLRenderer) DeleteTexture(handle metadata.Handle) {
	if _, ok := r.lookup(handle, kindTexture); ok {
		r.deleteObject(handle)
	}
}

func (r *OpenGLRenderer) CreateShader(vertexSource, fragmentSource string) (metadata.Handle, error) {
	program, err := newProgram(vertexSource, fragmentSource)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	handle := r.register(kindProgram, program, 0)
	r.uniforms[handle] = make(map[string]int32)
	return handle, nil
}

func (r *OpenGLRenderer) UseShader(handle metadata.Handle) {
	obj, ok := r.lookup(handle, kindProgram)
	if !ok {
		gl.UseProgram(0)
		return
	}
	gl.UseProgram(obj.name)
}

func (r *OpenGLRenderer) DeleteShader(handle metadata.Handle) {
	if _, ok := r.lookup(handle, kindProgram); ok {
		r.deleteObject(handle)
	}
}

// uniformLocation caches lookups, including misses (-1), per program.
func (r *OpenGLRenderer) uniformLocation(shader metadata.Handle, name string) int32 {
	obj, ok := r.lookup(shader, kindProgram)
	if !ok {
		return -1
	}
	cache := r.uniforms[shader]
	if loc, ok := cache[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(obj.name, gl.Str(name+"\x00"))
	if loc < 0 {
		core.LogWarn("uniform '%s' not found in program %d", name, shader)
	}
	cache[name] = loc
	return loc
}

func (r *OpenGLRenderer) SetUniformMat4(shader metadata.Handle, name string, value math.Mat4) {
	loc := r.uniformLocation(shader, name)
	if loc < 0 {
		return
	}
	// Mat4 is stored row-vector style, which is what GLSL reads column-major.
	gl.UniformMatrix4fv(loc, 1, false, &value.Data[0])
}

func (r *OpenGLRenderer) SetUniformInt(shader metadata.Handle, name string, value int32) {
	loc := r.uniformLocation(shader, name)
	if loc < 0 {
		return
	}
	gl.Uniform1i(loc, value)
}

func (r *OpenGLRenderer) SetBlendMode(mode metadata.BlendMode) {
	r.blend = mode
	switch mode {
	case metadata.BlendModeNone:
		gl.Disable(gl.BLEND)
		return
	case metadata.BlendModeAdditive:
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	case metadata.BlendModeMultiply:
		gl.BlendFunc(gl.DST_COLOR, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	}
	gl.Enable(gl.BLEND)
}

func (r *OpenGLRenderer) BlendMode() metadata.BlendMode {
	return r.blend
}

func primitive(p metadata.PrimitiveType) uint32 {
	switch p {
	case metadata.PrimitiveTriangleStrip:
		return gl.TRIANGLE_STRIP
	case metadata.PrimitiveLines:
		return gl.LINES
	}
	return gl.TRIANGLES
}

func indexType(t metadata.IndexType) uint32 {
	if t == metadata.IndexTypeUint32 {
		return gl.UNSIGNED_INT
	}
	return gl.UNSIGNED_SHORT
}

func (r *OpenGLRenderer) DrawElements(p metadata.PrimitiveType, count int32, t metadata.IndexType, offset int) {
	if count <= 0 {
		return
	}
	gl.DrawElementsWithOffset(primitive(p), count, indexType(t), uintptr(offset))
}

func newProgram(vertexSource, fragmentSource string) (uint32, error) {
	vert, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	defer gl.DeleteShader(vert)
	frag, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", core.ErrShaderLink, strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", core.ErrShaderCompilation, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}
