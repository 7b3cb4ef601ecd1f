package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// ShaderSource resolves shader programs by name.
type ShaderSource interface {
	Get(name string) (*metadata.Shader, error)
}

type SpriteRendererConfig struct {
	/** @brief Program used for every batch. Defaults to the builtin sprite shader. */
	ShaderName string
	/** @brief Viewport used for the default projection when no camera is set. */
	ViewportWidth  int32
	ViewportHeight int32
}

// RenderStats counts the work of the most recent frame. It is reset by Begin.
type RenderStats struct {
	DrawCalls        int
	SpritesSubmitted int
	SpritesDrawn     int
	SpritesCulled    int
	SpritesSkipped   int
	Batches          int
}

/**
 * @brief Batches textured quads by texture and issues one indexed draw call
 * per batch flush. Draw calls are only accepted between Begin and End. The
 * renderer is not safe for concurrent use.
 */
type SpriteRenderer struct {
	config   SpriteRendererConfig
	graphics renderer.GraphicsAPI
	shaders  ShaderSource

	shader       *metadata.Shader
	whiteTexture *metadata.Texture

	camera  *components.Camera
	frustum *components.FrustumCuller

	projection math.Mat4
	view       math.Mat4

	batches *batchStore
	stats   RenderStats

	initialized bool
	drawing     bool
}

func NewSpriteRenderer(config SpriteRendererConfig, graphics renderer.GraphicsAPI, shaders ShaderSource) *SpriteRenderer {
	if config.ShaderName == "" {
		config.ShaderName = metadata.BUILTIN_SHADER_NAME_SPRITE
	}
	return &SpriteRenderer{
		config:     config,
		graphics:   graphics,
		shaders:    shaders,
		frustum:    components.NewFrustumCuller(),
		projection: math.NewMat4Orthographic(0, float32(config.ViewportWidth), float32(config.ViewportHeight), 0, -1, 1),
		view:       math.NewMat4Identity(),
		batches:    newBatchStore(),
	}
}

// Initialize resolves the shader and creates the white texture used for
// solid fills. Both dependencies are required.
func (sr *SpriteRenderer) Initialize() error {
	if sr.graphics == nil {
		err := fmt.Errorf("sprite renderer: %w", core.ErrMissingGraphicsAPI)
		core.LogError("%s", err)
		return err
	}
	if sr.shaders == nil {
		err := fmt.Errorf("sprite renderer: %w", core.ErrMissingShaderSystem)
		core.LogError("%s", err)
		return err
	}
	if sr.initialized {
		return core.ErrSystemAlreadyInitialize
	}

	shader, err := sr.shaders.Get(sr.config.ShaderName)
	if err != nil {
		core.LogError("sprite renderer: %s", err)
		return err
	}
	sr.shader = shader

	white := []uint8{255, 255, 255, 255}
	handle := sr.graphics.CreateTexture(metadata.TextureConfig{Width: 1, Height: 1}, white)
	if !handle.IsValid() {
		err := fmt.Errorf("sprite renderer white texture: %w", core.ErrInvalidHandle)
		core.LogError("%s", err)
		return err
	}
	sr.whiteTexture = &metadata.Texture{
		Name:         metadata.WHITE_TEXTURE_NAME,
		Handle:       handle,
		Width:        1,
		Height:       1,
		ChannelCount: 4,
	}

	sr.initialized = true
	return nil
}

// Shutdown releases every batch buffer and the white texture.
func (sr *SpriteRenderer) Shutdown() error {
	if !sr.initialized {
		return nil
	}
	for _, b := range sr.batches.arena {
		sr.graphics.DeleteVertexArray(b.VAO)
		sr.graphics.DeleteBuffer(b.VBO)
		sr.graphics.DeleteBuffer(b.IBO)
	}
	sr.batches = newBatchStore()
	if sr.whiteTexture != nil {
		sr.graphics.DeleteTexture(sr.whiteTexture.Handle)
		sr.whiteTexture = nil
	}
	sr.drawing = false
	sr.initialized = false
	return nil
}

func (sr *SpriteRenderer) IsDrawing() bool {
	return sr.drawing
}

func (sr *SpriteRenderer) Stats() RenderStats {
	return sr.stats
}

// SetCamera makes Begin take its matrices and culling rectangle from camera.
// A nil camera disables culling and restores the manual matrices.
func (sr *SpriteRenderer) SetCamera(camera *components.Camera) {
	sr.camera = camera
	if camera == nil {
		sr.frustum.Invalidate()
	}
}

func (sr *SpriteRenderer) Camera() *components.Camera {
	return sr.camera
}

// SetProjectionMatrix takes effect immediately when called between Begin and
// End. With a camera set it is replaced by the camera's at the next Begin.
func (sr *SpriteRenderer) SetProjectionMatrix(projection math.Mat4) {
	sr.projection = projection
	if sr.drawing {
		sr.flushCurrent()
		sr.graphics.SetUniformMat4(sr.shader.Handle, metadata.UNIFORM_PROJECTION, projection)
	}
}

func (sr *SpriteRenderer) SetViewMatrix(view math.Mat4) {
	sr.view = view
	if sr.drawing {
		sr.flushCurrent()
		sr.graphics.SetUniformMat4(sr.shader.Handle, metadata.UNIFORM_VIEW, view)
	}
}

// Begin starts a frame. It refreshes the culling rectangle, forgets last
// frame's texture routing and prepares the pipeline state.
func (sr *SpriteRenderer) Begin() {
	if !sr.initialized {
		core.LogWarn("SpriteRenderer.Begin called before Initialize")
		return
	}
	if sr.drawing {
		core.LogWarn("SpriteRenderer.Begin called while already drawing")
		return
	}

	sr.stats = RenderStats{}
	if sr.camera != nil {
		sr.frustum.UpdateFrustum(sr.camera)
		sr.projection = sr.camera.GetProjectionMatrix()
		sr.view = sr.camera.GetViewMatrix()
	}
	sr.batches.beginFrame()

	sr.graphics.UseShader(sr.shader.Handle)
	sr.graphics.SetUniformMat4(sr.shader.Handle, metadata.UNIFORM_PROJECTION, sr.projection)
	sr.graphics.SetUniformMat4(sr.shader.Handle, metadata.UNIFORM_VIEW, sr.view)
	sr.graphics.SetUniformInt(sr.shader.Handle, metadata.UNIFORM_TEXTURE, 0)
	sr.graphics.SetBlendMode(metadata.BlendModeAlpha)

	sr.drawing = true
}

// End sorts the batches, flushes what is still open and leaves the drawing state.
func (sr *SpriteRenderer) End() {
	if !sr.drawing {
		core.LogWarn("SpriteRenderer.End called without Begin")
		return
	}

	sr.batches.optimize()
	for _, id := range sr.batches.order {
		if sr.batches.arena[id].IsEmpty() {
			break
		}
		sr.flushBatch(id)
	}
	sr.batches.current = noBatch
	sr.stats.Batches = len(sr.batches.arena)
	sr.drawing = false
}

func (sr *SpriteRenderer) DrawSprite(sprite *components.Sprite) {
	if !sr.drawing {
		core.LogWarn("SpriteRenderer.DrawSprite called without Begin")
		return
	}
	if sprite == nil {
		return
	}
	sr.stats.SpritesSubmitted++

	if sr.camera != nil && !sr.frustum.IsSpriteVisible(sprite) {
		sr.stats.SpritesCulled++
		return
	}
	if !sprite.Texture.IsValid() {
		core.LogDebug("SpriteRenderer skipped a sprite without a valid texture")
		sr.stats.SpritesSkipped++
		return
	}

	u0, v0, u1, v1 := sprite.UVs()
	sr.submitQuad(sprite.Texture, sprite.Corners(), u0, v0, u1, v1, sprite.Colour)
}

// DrawTexture draws the whole texture with its top-left corner at position.
func (sr *SpriteRenderer) DrawTexture(texture *metadata.Texture, position math.Vec2, colour math.Vec4) {
	dst := math.NewRect(position.X, position.Y, 0, 0)
	if texture != nil {
		dst.Width, dst.Height = float32(texture.Width), float32(texture.Height)
	}
	sr.DrawTextureRegion(texture, math.Rect{}, dst, colour)
}

// DrawTextureRegion draws the pixel rectangle src of texture into dst. An
// empty src selects the whole texture.
func (sr *SpriteRenderer) DrawTextureRegion(texture *metadata.Texture, src, dst math.Rect, colour math.Vec4) {
	if !sr.drawing {
		core.LogWarn("SpriteRenderer.DrawTextureRegion called without Begin")
		return
	}
	sr.stats.SpritesSubmitted++

	if sr.camera != nil && !sr.frustum.IsRectVisible(dst) {
		sr.stats.SpritesCulled++
		return
	}
	if !texture.IsValid() {
		core.LogDebug("SpriteRenderer skipped a region without a valid texture")
		sr.stats.SpritesSkipped++
		return
	}

	if src.IsEmpty() {
		src = math.NewRect(0, 0, float32(texture.Width), float32(texture.Height))
	}
	w, h := float32(texture.Width), float32(texture.Height)
	sr.submitQuad(texture, rectCorners(dst), src.Left()/w, src.Top()/h, src.Right()/w, src.Bottom()/h, colour)
}

// DrawRectangle fills rect, or outlines it with four one pixel edges.
func (sr *SpriteRenderer) DrawRectangle(rect math.Rect, colour math.Vec4, filled bool) {
	if !sr.drawing {
		core.LogWarn("SpriteRenderer.DrawRectangle called without Begin")
		return
	}
	if !filled {
		sr.DrawRectangle(math.NewRect(rect.X, rect.Y, rect.Width, 1), colour, true)
		sr.DrawRectangle(math.NewRect(rect.X, rect.Bottom()-1, rect.Width, 1), colour, true)
		sr.DrawRectangle(math.NewRect(rect.X, rect.Y, 1, rect.Height), colour, true)
		sr.DrawRectangle(math.NewRect(rect.Right()-1, rect.Y, 1, rect.Height), colour, true)
		return
	}
	sr.DrawTextureRegion(sr.whiteTexture, math.Rect{}, rect, colour)
}

// DrawText lays out text with the font's glyph metrics and kerning. The
// position is the top-left of the first line.
func (sr *SpriteRenderer) DrawText(font *Font, text string, position math.Vec2, colour math.Vec4) {
	if !sr.drawing {
		core.LogWarn("SpriteRenderer.DrawText called without Begin")
		return
	}
	if font == nil || font.Data == nil {
		return
	}

	font.layout(text, position, func(glyph *metadata.FontGlyph, dst math.Rect) {
		src := math.NewRect(float32(glyph.X), float32(glyph.Y), float32(glyph.Width), float32(glyph.Height))
		sr.DrawTextureRegion(font.Page(glyph.PageID), src, dst, colour)
	})
}

func (sr *SpriteRenderer) submitQuad(texture *metadata.Texture, corners [4]math.Vec2, u0, v0, u1, v1 float32, colour math.Vec4) {
	id := sr.batchFor(texture)
	b := sr.batches.get(id)
	if b == nil {
		sr.stats.SpritesSkipped++
		return
	}

	b.appendQuad(corners, u0, v0, u1, v1, colour)
	sr.stats.SpritesDrawn++

	if b.IsFull() {
		sr.flushBatch(id)
	}
}

// batchFor routes texture to a batch and makes it current, flushing the
// previously open batch if it differs.
func (sr *SpriteRenderer) batchFor(texture *metadata.Texture) batchID {
	id := sr.batches.find(texture)
	if id == noBatch {
		id = sr.createBatch(texture)
		if id == noBatch {
			return noBatch
		}
	}
	sr.setCurrent(id)
	return id
}

func (sr *SpriteRenderer) setCurrent(id batchID) {
	if prev := sr.batches.current; prev != id && prev != noBatch && !sr.batches.arena[prev].IsEmpty() {
		sr.flushBatch(prev)
	}
	sr.batches.current = id
	sr.batches.lookup[sr.batches.arena[id].handle()] = id
}

func (sr *SpriteRenderer) createBatch(texture *metadata.Texture) batchID {
	b := newSpriteBatch(texture)
	b.VBO = sr.graphics.CreateVertexBuffer(nil, MaxSpritesPerBatch*VerticesPerSprite*vertexStride, metadata.BufferUsageDynamic)
	b.IBO = sr.graphics.CreateIndexBuffer(nil, MaxSpritesPerBatch*IndicesPerSprite*metadata.IndexTypeUint16.Size(), metadata.BufferUsageDynamic)
	if !b.VBO.IsValid() || !b.IBO.IsValid() {
		core.LogError("SpriteRenderer failed to create batch buffers")
		sr.graphics.DeleteBuffer(b.VBO)
		sr.graphics.DeleteBuffer(b.IBO)
		return noBatch
	}
	b.VAO = sr.graphics.CreateVertexArray(b.VBO, b.IBO, SpriteVertexLayout)
	if !b.VAO.IsValid() {
		core.LogError("SpriteRenderer failed to create batch vertex array")
		sr.graphics.DeleteBuffer(b.VBO)
		sr.graphics.DeleteBuffer(b.IBO)
		return noBatch
	}
	return sr.batches.add(b)
}

func (sr *SpriteRenderer) flushCurrent() {
	if b := sr.batches.get(sr.batches.current); b != nil && !b.IsEmpty() {
		sr.flushBatch(sr.batches.current)
	}
}

func (sr *SpriteRenderer) flushBatch(id batchID) {
	b := sr.batches.arena[id]
	if b.IsEmpty() {
		return
	}
	sr.graphics.UpdateVertexBuffer(b.VBO, b.Vertices)
	sr.graphics.UpdateIndexBuffer(b.IBO, b.Indices)
	sr.graphics.BindVertexArray(b.VAO)
	sr.graphics.BindTexture(b.handle(), 0)
	sr.graphics.DrawElements(metadata.PrimitiveTriangles, int32(len(b.Indices)), metadata.IndexTypeUint16, 0)
	sr.stats.DrawCalls++
	b.reset()
}

func rectCorners(r math.Rect) [4]math.Vec2 {
	return [4]math.Vec2{
		math.NewVec2(r.Left(), r.Top()),
		math.NewVec2(r.Right(), r.Top()),
		math.NewVec2(r.Right(), r.Bottom()),
		math.NewVec2(r.Left(), r.Bottom()),
	}
}
