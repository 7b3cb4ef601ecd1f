package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

type drawCall struct {
	texture metadata.Handle
	vao     metadata.Handle
	count   int32
}

// fakeGraphics records what the renderer asks of the GPU. Handles are
// handed out from a single counter so they never collide.
type fakeGraphics struct {
	mu sync.Mutex

	next     metadata.Handle
	failAll  bool
	shaderEr error

	boundTexture metadata.Handle
	boundVAO     metadata.Handle
	shader       metadata.Handle
	blend        metadata.BlendMode

	vertexData map[metadata.Handle][]float32
	indexData  map[metadata.Handle][]uint16
	textures   map[metadata.Handle]metadata.TextureConfig
	deleted    map[metadata.Handle]bool
	uniforms   map[string]math.Mat4
	samplers   map[string]int32

	draws        []drawCall
	buffersMade  int
	arraysMade   int
	shadersMade  int
	maxDrawCount int32
}

func newFakeGraphics() *fakeGraphics {
	return &fakeGraphics{
		vertexData: make(map[metadata.Handle][]float32),
		indexData:  make(map[metadata.Handle][]uint16),
		textures:   make(map[metadata.Handle]metadata.TextureConfig),
		deleted:    make(map[metadata.Handle]bool),
		uniforms:   make(map[string]math.Mat4),
		samplers:   make(map[string]int32),
	}
}

func (g *fakeGraphics) handle() metadata.Handle {
	if g.failAll {
		return metadata.InvalidHandle
	}
	g.next++
	return g.next
}

func (g *fakeGraphics) Initialize(config *metadata.RendererBackendConfig) error { return nil }
func (g *fakeGraphics) Shutdown() error                                          { return nil }
func (g *fakeGraphics) Resized(width, height uint32) error                       { return nil }
func (g *fakeGraphics) BeginFrame(deltaTime float64) error                       { return nil }
func (g *fakeGraphics) EndFrame(deltaTime float64) error                         { return nil }

func (g *fakeGraphics) CreateVertexBuffer(data []float32, size int, usage metadata.BufferUsage) metadata.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.buffersMade++
	return g.handle()
}

func (g *fakeGraphics) UpdateVertexBuffer(handle metadata.Handle, data []float32) {
	g.vertexData[handle] = append([]float32(nil), data...)
}

func (g *fakeGraphics) CreateIndexBuffer(data []uint16, size int, usage metadata.BufferUsage) metadata.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.buffersMade++
	return g.handle()
}

func (g *fakeGraphics) UpdateIndexBuffer(handle metadata.Handle, data []uint16) {
	g.indexData[handle] = append([]uint16(nil), data...)
}

func (g *fakeGraphics) DeleteBuffer(handle metadata.Handle) { g.deleted[handle] = true }

func (g *fakeGraphics) CreateVertexArray(vbo, ibo metadata.Handle, layout []metadata.VertexAttribute) metadata.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.arraysMade++
	return g.handle()
}

func (g *fakeGraphics) BindVertexArray(handle metadata.Handle)   { g.boundVAO = handle }
func (g *fakeGraphics) DeleteVertexArray(handle metadata.Handle) { g.deleted[handle] = true }

func (g *fakeGraphics) CreateTexture(config metadata.TextureConfig, pixels []uint8) metadata.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := g.handle()
	if h.IsValid() {
		g.textures[h] = config
	}
	return h
}

func (g *fakeGraphics) BindTexture(handle metadata.Handle, unit uint32) { g.boundTexture = handle }
func (g *fakeGraphics) DeleteTexture(handle metadata.Handle)            { g.deleted[handle] = true }

func (g *fakeGraphics) CreateShader(vertexSource, fragmentSource string) (metadata.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.shaderEr != nil {
		return metadata.InvalidHandle, g.shaderEr
	}
	if vertexSource == "" || fragmentSource == "" {
		return metadata.InvalidHandle, errors.New("empty shader source")
	}
	g.shadersMade++
	return g.handle(), nil
}

func (g *fakeGraphics) UseShader(handle metadata.Handle)    { g.shader = handle }
func (g *fakeGraphics) DeleteShader(handle metadata.Handle) { g.deleted[handle] = true }

func (g *fakeGraphics) SetUniformMat4(shader metadata.Handle, name string, value math.Mat4) {
	g.uniforms[name] = value
}

func (g *fakeGraphics) SetUniformInt(shader metadata.Handle, name string, value int32) {
	g.samplers[name] = value
}

func (g *fakeGraphics) SetBlendMode(mode metadata.BlendMode) { g.blend = mode }

func (g *fakeGraphics) DrawElements(primitive metadata.PrimitiveType, count int32, indexType metadata.IndexType, offset int) {
	if primitive != metadata.PrimitiveTriangles || indexType != metadata.IndexTypeUint16 {
		panic(fmt.Sprintf("unexpected draw %v %v", primitive, indexType))
	}
	g.draws = append(g.draws, drawCall{texture: g.boundTexture, vao: g.boundVAO, count: count})
	if count > g.maxDrawCount {
		g.maxDrawCount = count
	}
}

// fakeShaders resolves every name to one program.
type fakeShaders struct {
	shader *metadata.Shader
}

func (f *fakeShaders) Get(name string) (*metadata.Shader, error) {
	if f.shader == nil || f.shader.Name != name {
		return nil, fmt.Errorf("shader '%s' not found", name)
	}
	return f.shader, nil
}

// fakeAssets serves in-memory images and fonts.
type fakeAssets struct {
	mu       sync.Mutex
	images   map[string]*metadata.ImageResourceData
	fonts    map[string]*metadata.BitmapFontResourceData
	shaders  map[string]*metadata.ShaderConfig
	loads    int
	unloads  int
	gate     chan struct{}
	loadedAt []string
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{
		images:  make(map[string]*metadata.ImageResourceData),
		fonts:   make(map[string]*metadata.BitmapFontResourceData),
		shaders: make(map[string]*metadata.ShaderConfig),
	}
}

func (f *fakeAssets) addImage(name string, w, h uint32) {
	f.images[name] = &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        w,
		Height:       h,
		Pixels:       make([]uint8, w*h*4),
	}
}

func (f *fakeAssets) Load(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	f.loadedAt = append(f.loadedAt, name)

	var data interface{}
	var ok bool
	switch resourceType {
	case metadata.ResourceTypeImage:
		data, ok = f.images[name]
	case metadata.ResourceTypeBitmapFont:
		data, ok = f.fonts[name]
	case metadata.ResourceTypeShader:
		data, ok = f.shaders[name]
	}
	if !ok {
		return nil, fmt.Errorf("%s '%s' missing", resourceType, name)
	}
	return &metadata.Resource{Name: name, Data: data, LoaderID: uint32(resourceType)}, nil
}

func (f *fakeAssets) Unload(resource *metadata.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unloads++
	resource.Data = nil
	return nil
}
