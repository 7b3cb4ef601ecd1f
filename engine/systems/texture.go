package systems

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima2d/engine/containers"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// AssetLoader is the part of the asset manager the systems depend on.
type AssetLoader interface {
	Load(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
	Unload(resource *metadata.Resource) error
}

const (
	defaultTextureDimension = 16
	defaultTextureCheck     = 4
)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
	/** @brief Sampling applied to textures loaded from disk. */
	Filter metadata.TextureFilter
}

type TextureSystem struct {
	Config         *TextureSystemConfig
	DefaultTexture *metadata.Texture
	// Hashtable for texture lookups.
	RegisteredTextureTable map[string]*metadata.TextureReference

	nextID uint32

	// Decoded images waiting for upload on the render thread.
	pendingMu sync.Mutex
	pending   *containers.RingQueue[*metadata.TextureLoadParams]

	// sub systems
	jobSystem    *JobSystem
	assetManager AssetLoader
	graphics     renderer.GraphicsAPI
}

func NewTextureSystem(config *TextureSystemConfig, js *JobSystem, am AssetLoader, graphics renderer.GraphicsAPI) (*TextureSystem, error) {
	if config == nil || config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0: %w", core.ErrInvalidConfiguration)
		core.LogError("%s", err)
		return nil, err
	}
	if graphics == nil {
		err := fmt.Errorf("func NewTextureSystem: %w", core.ErrMissingGraphicsAPI)
		core.LogError("%s", err)
		return nil, err
	}

	return &TextureSystem{
		Config:                 config,
		RegisteredTextureTable: make(map[string]*metadata.TextureReference),
		pending:                containers.NewRingQueue[*metadata.TextureLoadParams](int(config.MaxTextureCount)),
		jobSystem:              js,
		assetManager:           am,
		graphics:               graphics,
	}, nil
}

// Initialize uploads the magenta and black checker used for missing or
// still-loading textures.
func (ts *TextureSystem) Initialize() error {
	pixels := make([]uint8, defaultTextureDimension*defaultTextureDimension*4)
	for y := 0; y < defaultTextureDimension; y++ {
		for x := 0; x < defaultTextureDimension; x++ {
			i := (y*defaultTextureDimension + x) * 4
			pixels[i+3] = 255
			if (x/defaultTextureCheck+y/defaultTextureCheck)%2 == 0 {
				pixels[i] = 255
				pixels[i+2] = 255
			}
		}
	}

	ts.DefaultTexture = &metadata.Texture{
		ID:           ts.newID(),
		Name:         metadata.DEFAULT_TEXTURE_NAME,
		Width:        defaultTextureDimension,
		Height:       defaultTextureDimension,
		ChannelCount: 4,
		Filter:       metadata.TextureFilterModeNearest,
		Repeat:       metadata.TextureRepeatRepeat,
	}
	if err := ts.upload(ts.DefaultTexture, pixels); err != nil {
		core.LogError("failed to create default texture: %s", err)
		return err
	}
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	// Destroy all loaded textures.
	for name, ref := range ts.RegisteredTextureTable {
		ts.destroyTexture(ref.Texture)
		delete(ts.RegisteredTextureTable, name)
	}
	ts.destroyTexture(ts.DefaultTexture)
	return nil
}

func (ts *TextureSystem) GetDefaultTexture() *metadata.Texture {
	return ts.DefaultTexture
}

// Get returns a registered texture without touching its reference count.
func (ts *TextureSystem) Get(name string) (*metadata.Texture, bool) {
	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		return nil, false
	}
	return ref.Texture, true
}

func (ts *TextureSystem) Count() int {
	return len(ts.RegisteredTextureTable)
}

func (ts *TextureSystem) ReferenceCount(name string) uint64 {
	if ref, ok := ts.RegisteredTextureTable[name]; ok {
		return ref.ReferenceCount
	}
	return 0
}

/**
 * @brief Acquires a texture by name, loading and uploading it on first use.
 * The reference count is incremented on every call.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*metadata.Texture, error) {
	// Return default texture, but warn about it since this should be returned via GetDefaultTexture();
	if name == metadata.DEFAULT_TEXTURE_NAME {
		core.LogWarn("texture system Acquire called for default texture. Use GetDefaultTexture for texture 'default'")
		return ts.DefaultTexture, nil
	}
	if ref, ok := ts.RegisteredTextureTable[name]; ok {
		ref.ReferenceCount++
		return ref.Texture, nil
	}
	if err := ts.checkCapacity(name); err != nil {
		return nil, err
	}

	resource, err := ts.loadImage(name)
	if err != nil {
		core.LogError("failed to load texture '%s': %s", name, err)
		return nil, err
	}
	defer ts.unload(resource)

	texture := &metadata.Texture{ID: ts.newID(), Name: name, Filter: ts.Config.Filter}
	if err := ts.uploadImage(texture, resource.Data.(*metadata.ImageResourceData)); err != nil {
		core.LogError("failed to upload texture '%s': %s", name, err)
		return nil, err
	}

	ts.RegisteredTextureTable[name] = &metadata.TextureReference{
		ReferenceCount: 1,
		Texture:        texture,
		AutoRelease:    autoRelease,
	}
	core.LogDebug("texture '%s' loaded (%dx%d)", name, texture.Width, texture.Height)
	return texture, nil
}

/**
 * @brief Acquires a texture by name and decodes it on the job system. Until
 * Update uploads the pixels, the returned texture shares the default
 * texture's handle and carries the IsLoading flag.
 */
func (ts *TextureSystem) AcquireAsync(name string, autoRelease bool) (*metadata.Texture, error) {
	if name == metadata.DEFAULT_TEXTURE_NAME {
		return ts.DefaultTexture, nil
	}
	if ref, ok := ts.RegisteredTextureTable[name]; ok {
		ref.ReferenceCount++
		return ref.Texture, nil
	}
	if ts.jobSystem == nil {
		return ts.Acquire(name, autoRelease)
	}
	if err := ts.checkCapacity(name); err != nil {
		return nil, err
	}

	texture := &metadata.Texture{
		ID:     ts.newID(),
		Name:   name,
		Filter: ts.Config.Filter,
		Flags:  metadata.TextureFlagBits(metadata.TextureFlagIsLoading),
	}
	ts.standIn(texture)

	ts.RegisteredTextureTable[name] = &metadata.TextureReference{
		ReferenceCount: 1,
		Texture:        texture,
		AutoRelease:    autoRelease,
	}

	err := ts.jobSystem.Submit(metadata.JobTask{
		Priority: metadata.JOB_PRIORITY_NORMAL,
		// Kick off a texture loading job. Only handles loading from disk
		// to CPU. GPU upload is handled by Update.
		InputParams: &metadata.TextureLoadParams{
			ResourceName: name,
			OutTexture:   texture,
		},
		OnStart:    ts.textureLoadJobStart,
		OnComplete: ts.textureLoadJobDone,
		OnFailure:  ts.textureLoadJobDone,
	})
	if err != nil {
		delete(ts.RegisteredTextureTable, name)
		core.LogError("failed to queue texture '%s': %s", name, err)
		return nil, err
	}
	return texture, nil
}

// Pending reports how many decoded images are waiting for Update.
func (ts *TextureSystem) Pending() int {
	ts.pendingMu.Lock()
	defer ts.pendingMu.Unlock()
	return ts.pending.Len()
}

/**
 * @brief Uploads images decoded by the job system. Must be called on the
 * render thread, once per frame.
 */
func (ts *TextureSystem) Update() {
	for {
		ts.pendingMu.Lock()
		params, err := ts.pending.Dequeue()
		ts.pendingMu.Unlock()
		if err != nil {
			return
		}
		ts.finishAsyncLoad(params)
	}
}

func (ts *TextureSystem) finishAsyncLoad(params *metadata.TextureLoadParams) {
	texture := params.OutTexture
	defer ts.unload(params.ImageResource)

	ref, ok := ts.RegisteredTextureTable[params.ResourceName]
	if !ok || ref.Texture != texture {
		core.LogDebug("texture '%s' released before its load finished", params.ResourceName)
		return
	}

	texture.Flags &^= metadata.TextureFlagBits(metadata.TextureFlagIsLoading)
	if params.Err != nil {
		core.LogError("failed to load texture '%s': %s", params.ResourceName, params.Err)
		return
	}

	if err := ts.uploadImage(texture, params.ImageResource.Data.(*metadata.ImageResourceData)); err != nil {
		core.LogError("failed to upload texture '%s': %s", params.ResourceName, err)
		ts.standIn(texture)
		return
	}
	texture.Generation++
	core.LogDebug("successfully loaded texture '%s'", params.ResourceName)
}

func (ts *TextureSystem) textureLoadJobStart(params interface{}, resultChan chan<- interface{}) error {
	loadParams := params.(*metadata.TextureLoadParams)

	resource, err := ts.loadImage(loadParams.ResourceName)
	if err != nil {
		loadParams.Err = err
		resultChan <- loadParams
		return err
	}
	loadParams.ImageResource = resource
	resultChan <- loadParams
	return nil
}

func (ts *TextureSystem) textureLoadJobDone(resultChan <-chan interface{}) {
	params, ok := <-resultChan
	if !ok {
		return
	}
	loadParams := params.(*metadata.TextureLoadParams)

	ts.pendingMu.Lock()
	defer ts.pendingMu.Unlock()
	if err := ts.pending.Enqueue(loadParams); err != nil {
		core.LogError("texture '%s' dropped: %s", loadParams.ResourceName, err)
	}
}

/**
 * @brief Creates a texture from raw RGBA8 pixels. An empty name gets a
 * generated one. The texture is never auto-released.
 */
func (ts *TextureSystem) CreateFromPixels(name string, width, height uint32, pixels []uint8) (*metadata.Texture, error) {
	if name == "" {
		name = uuid.NewString()
	}
	if _, ok := ts.RegisteredTextureTable[name]; ok {
		return nil, fmt.Errorf("texture '%s' already exists: %w", name, core.ErrInvalidConfiguration)
	}
	if width == 0 || height == 0 || len(pixels) != int(width*height*4) {
		return nil, fmt.Errorf("texture '%s' expects %dx%d RGBA pixels, got %d bytes: %w", name, width, height, len(pixels), core.ErrInvalidConfiguration)
	}
	if err := ts.checkCapacity(name); err != nil {
		return nil, err
	}

	texture := &metadata.Texture{
		ID:           ts.newID(),
		Name:         name,
		Width:        width,
		Height:       height,
		ChannelCount: 4,
		Flags:        metadata.TextureFlagBits(metadata.TextureFlagIsWriteable),
		Filter:       ts.Config.Filter,
	}
	if transparent(pixels) {
		texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}
	if err := ts.upload(texture, pixels); err != nil {
		return nil, err
	}

	ts.RegisteredTextureTable[name] = &metadata.TextureReference{ReferenceCount: 1, Texture: texture}
	return texture, nil
}

/**
 * @brief Decrements the reference count. An auto-release texture is
 * destroyed when the count reaches zero.
 */
func (ts *TextureSystem) Release(name string) {
	// Ignore release requests for the default texture.
	if name == metadata.DEFAULT_TEXTURE_NAME {
		return
	}
	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		core.LogWarn("tried to release non-existent texture: '%s'", name)
		return
	}
	if ref.ReferenceCount == 0 {
		core.LogWarn("tried to release texture '%s' where references was already 0", name)
		return
	}

	ref.ReferenceCount--
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		ts.destroyTexture(ref.Texture)
		delete(ts.RegisteredTextureTable, name)
		core.LogDebug("released texture '%s', unloaded because reference count=0 and AutoRelease=true", name)
	}
}

func (ts *TextureSystem) checkCapacity(name string) error {
	if uint32(len(ts.RegisteredTextureTable)) >= ts.Config.MaxTextureCount {
		err := fmt.Errorf("texture system cannot hold '%s', adjust configuration to allow more: %w", name, core.ErrInvalidConfiguration)
		core.LogError("%s", err)
		return err
	}
	return nil
}

func (ts *TextureSystem) loadImage(name string) (*metadata.Resource, error) {
	if ts.assetManager == nil {
		return nil, fmt.Errorf("texture '%s': %w", name, core.ErrResourceNotFound)
	}
	resource, err := ts.assetManager.Load(name, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: false})
	if err != nil {
		return nil, err
	}
	if _, ok := resource.Data.(*metadata.ImageResourceData); !ok {
		return nil, fmt.Errorf("resource '%s' is not an image", name)
	}
	return resource, nil
}

func (ts *TextureSystem) unload(resource *metadata.Resource) {
	if resource == nil || ts.assetManager == nil {
		return
	}
	if err := ts.assetManager.Unload(resource); err != nil {
		core.LogWarn("failed to unload '%s': %s", resource.Name, err)
	}
}

func (ts *TextureSystem) uploadImage(texture *metadata.Texture, image *metadata.ImageResourceData) error {
	texture.Width = image.Width
	texture.Height = image.Height
	texture.ChannelCount = image.ChannelCount
	if image.HasTransparency {
		texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}
	return ts.upload(texture, image.Pixels)
}

func (ts *TextureSystem) upload(texture *metadata.Texture, pixels []uint8) error {
	handle := ts.graphics.CreateTexture(metadata.TextureConfig{
		Width:  texture.Width,
		Height: texture.Height,
		Filter: texture.Filter,
		Repeat: texture.Repeat,
	}, pixels)
	if !handle.IsValid() {
		return fmt.Errorf("texture '%s': %w", texture.Name, core.ErrInvalidHandle)
	}
	texture.Handle = handle
	return nil
}

// standIn points a texture at the default texture's GPU data.
func (ts *TextureSystem) standIn(texture *metadata.Texture) {
	if ts.DefaultTexture == nil {
		return
	}
	texture.Handle = ts.DefaultTexture.Handle
	texture.Width = ts.DefaultTexture.Width
	texture.Height = ts.DefaultTexture.Height
	texture.ChannelCount = ts.DefaultTexture.ChannelCount
}

func (ts *TextureSystem) destroyTexture(texture *metadata.Texture) {
	if texture == nil || !texture.Handle.IsValid() {
		return
	}
	// Textures still standing in for a load share the default handle.
	if ts.DefaultTexture != nil && texture != ts.DefaultTexture && texture.Handle == ts.DefaultTexture.Handle {
		texture.Handle = metadata.InvalidHandle
		return
	}
	ts.graphics.DeleteTexture(texture.Handle)
	texture.Handle = metadata.InvalidHandle
}

func (ts *TextureSystem) newID() uint32 {
	ts.nextID++
	return ts.nextID
}

func transparent(pixels []uint8) bool {
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] < 255 {
			return true
		}
	}
	return false
}
