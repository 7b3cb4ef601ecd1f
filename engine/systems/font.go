package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// Font is a loaded bitmap font with its page textures.
type Font struct {
	Name  string
	Data  *metadata.FontData
	Pages []*metadata.Texture
}

// Page returns the texture for a glyph page, or nil when it is missing.
func (f *Font) Page(id uint8) *metadata.Texture {
	if int(id) >= len(f.Pages) {
		return nil
	}
	return f.Pages[id]
}

// Glyph looks up a codepoint.
func (f *Font) Glyph(r rune) (*metadata.FontGlyph, bool) {
	g, ok := f.Data.Glyphs[int32(r)]
	return g, ok
}

// Kerning is the extra advance between two consecutive codepoints.
func (f *Font) Kerning(first, second rune) float32 {
	return float32(f.Data.Kernings[[2]int32{int32(first), int32(second)}])
}

// MeasureText returns the width of the widest line and the total height.
func (f *Font) MeasureText(text string) math.Vec2 {
	var width, lineWidth float32
	lines := 1
	prev := rune(-1)
	for _, r := range text {
		switch r {
		case '\n':
			width = math.Max(width, lineWidth)
			lineWidth = 0
			lines++
			prev = -1
			continue
		case '\t':
			lineWidth += f.Data.TabXAdvance
			prev = -1
			continue
		}
		g, ok := f.Glyph(r)
		if !ok {
			prev = -1
			continue
		}
		if prev >= 0 {
			lineWidth += f.Kerning(prev, r)
		}
		lineWidth += float32(g.XAdvance)
		prev = r
	}
	width = math.Max(width, lineWidth)
	return math.NewVec2(width, float32(lines)*float32(f.Data.LineHeight))
}

// layout walks text and reports the destination rectangle of every visible glyph.
func (f *Font) layout(text string, origin math.Vec2, emit func(glyph *metadata.FontGlyph, dst math.Rect)) {
	x, y := origin.X, origin.Y
	prev := rune(-1)
	for _, r := range text {
		switch r {
		case '\n':
			x = origin.X
			y += float32(f.Data.LineHeight)
			prev = -1
			continue
		case '\t':
			x += f.Data.TabXAdvance
			prev = -1
			continue
		}
		g, ok := f.Glyph(r)
		if !ok {
			prev = -1
			continue
		}
		if prev >= 0 {
			x += f.Kerning(prev, r)
		}
		if g.Width > 0 && g.Height > 0 {
			emit(g, math.NewRect(x+float32(g.XOffset), y+float32(g.YOffset), float32(g.Width), float32(g.Height)))
		}
		x += float32(g.XAdvance)
		prev = r
	}
}

type FontSystem struct {
	Config *metadata.FontSystemConfig
	Fonts  map[string]*Font
	// subsystems
	textureSystem *TextureSystem
	assetManager  AssetLoader
}

func NewFontSystem(config *metadata.FontSystemConfig, ts *TextureSystem, am AssetLoader) (*FontSystem, error) {
	if config == nil || config.MaxBitmapFontCount == 0 {
		err := fmt.Errorf("NewFontSystem - config.MaxBitmapFontCount must be > 0: %w", core.ErrInvalidConfiguration)
		core.LogError("%s", err)
		return nil, err
	}
	if ts == nil {
		err := fmt.Errorf("NewFontSystem requires a texture system: %w", core.ErrSystemNotInitialized)
		core.LogError("%s", err)
		return nil, err
	}
	return &FontSystem{
		Config:        config,
		Fonts:         make(map[string]*Font),
		textureSystem: ts,
		assetManager:  am,
	}, nil
}

// Initialize loads the fonts listed in the configuration.
func (fs *FontSystem) Initialize() error {
	for _, cfg := range fs.Config.BitmapFontConfigs {
		if _, err := fs.LoadBitmapFont(cfg); err != nil {
			core.LogError("failed to load bitmap font: %s", cfg.Name)
			return err
		}
	}
	return nil
}

func (fs *FontSystem) Shutdown() error {
	for name := range fs.Fonts {
		fs.Unload(name)
	}
	return nil
}

func (fs *FontSystem) LoadBitmapFont(config *metadata.BitmapFontConfig) (*Font, error) {
	if font, ok := fs.Fonts[config.Name]; ok {
		core.LogWarn("a font named '%s' already exists and will not be loaded again", config.Name)
		// Not a hard error, return success since it already exists and can be used.
		return font, nil
	}
	if len(fs.Fonts) >= int(fs.Config.MaxBitmapFontCount) {
		return nil, fmt.Errorf("no space left to allocate bitmap font '%s'. Increase maximum number allowed in font system config: %w", config.Name, core.ErrInvalidConfiguration)
	}
	if fs.assetManager == nil {
		return nil, fmt.Errorf("bitmap font '%s': %w", config.Name, core.ErrResourceNotFound)
	}

	res, err := fs.assetManager.Load(config.ResourceName, metadata.ResourceTypeBitmapFont, nil)
	if err != nil {
		core.LogError("failed to load bitmap font '%s'", config.ResourceName)
		return nil, err
	}
	data, ok := res.Data.(*metadata.BitmapFontResourceData)
	if !ok {
		return nil, fmt.Errorf("resource '%s' is not a bitmap font", config.ResourceName)
	}

	font := &Font{
		Name:  config.Name,
		Data:  data.Data,
		Pages: make([]*metadata.Texture, len(data.Pages)),
	}
	// Acquire the page textures.
	for _, page := range data.Pages {
		if page.ID < 0 || int(page.ID) >= len(font.Pages) {
			fs.releasePages(font)
			return nil, fmt.Errorf("bitmap font '%s' has page id %d out of range", config.Name, page.ID)
		}
		texture, err := fs.textureSystem.Acquire(page.Name, fs.Config.AutoRelease)
		if err != nil {
			fs.releasePages(font)
			return nil, err
		}
		font.Pages[page.ID] = texture
	}

	fs.Fonts[config.Name] = font
	core.LogDebug("bitmap font '%s' loaded (%d glyphs, %d pages)", config.Name, len(font.Data.Glyphs), len(font.Pages))
	return font, nil
}

// Acquire returns a loaded font by name.
func (fs *FontSystem) Acquire(name string) (*Font, error) {
	font, ok := fs.Fonts[name]
	if !ok {
		return nil, fmt.Errorf("font '%s': %w", name, core.ErrResourceNotFound)
	}
	return font, nil
}

// Unload releases the page textures and forgets the font.
func (fs *FontSystem) Unload(name string) {
	font, ok := fs.Fonts[name]
	if !ok {
		return
	}
	fs.releasePages(font)
	delete(fs.Fonts, name)
}

func (fs *FontSystem) releasePages(font *Font) {
	for i, page := range font.Pages {
		if page != nil {
			fs.textureSystem.Release(page.Name)
			font.Pages[i] = nil
		}
	}
}
