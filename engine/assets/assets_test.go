package assets

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

const testFont = `info face="Test" size=16 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=1,1 outline=0
common lineHeight=18 base=14 scaleW=64 scaleH=64 pages=1 packed=0 alphaChnl=0 redChnl=4 greenChnl=4 blueChnl=4
page id=0 file="test_0.png"
chars count=2
char id=32   x=0     y=0     width=0     height=0     xoffset=0     yoffset=14    xadvance=4     page=0  chnl=15
char id=65   x=1     y=1     width=8     height=10    xoffset=0     yoffset=4     xadvance=9     page=0  chnl=15
kernings count=1
kerning first=65  second=65  amount=-1
`

const testMap = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="2" height="2" tilewidth="16" tileheight="16" infinite="0" nextlayerid="2" nextobjectid="1">
 <tileset firstgid="1" name="terrain" tilewidth="16" tileheight="16" tilecount="4" columns="2">
  <image source="terrain.png" width="32" height="32"/>
 </tileset>
 <layer id="1" name="ground" width="2" height="2" visible="1">
  <data encoding="csv">
1,2,
0,2147483652
</data>
 </layer>
</map>
`

const testShaderConfig = `name = "Shader.Tinted"
vertex = "tinted.vert"
fragment = "tinted.frag"

[[attributes]]
name = "a_position"
type = "vec3"

[[attributes]]
name = "a_colour"
type = "vec4"

[[uniforms]]
name = "u_projection"
type = "mat4"
`

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newFixtureDir lays out one asset of every supported type.
func newFixtureDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"textures", "shaders", "fonts", "maps"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writePNG(t, filepath.Join(root, "textures", "hero.png"), 4, 2, color.NRGBA{R: 255, A: 128})
	writeFile(t, filepath.Join(root, "shaders", "tinted.shadercfg"), testShaderConfig)
	writeFile(t, filepath.Join(root, "shaders", "tinted.vert"), "#version 410 core\nvoid main() {}\n")
	writeFile(t, filepath.Join(root, "shaders", "tinted.frag"), "#version 410 core\nvoid main() {}\n")
	writeFile(t, filepath.Join(root, "fonts", "test.fnt"), testFont)
	writePNG(t, filepath.Join(root, "fonts", "test_0.png"), 64, 64, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	writeFile(t, filepath.Join(root, "maps", "level.tmx"), testMap)
	writePNG(t, filepath.Join(root, "maps", "terrain.png"), 32, 32, color.NRGBA{G: 255, A: 255})
	return root
}

func newTestManager(t *testing.T) *AssetManager {
	t.Helper()
	am, err := NewAssetManager()
	if err != nil {
		t.Fatal(err)
	}
	if err := am.Initialize(newFixtureDir(t)); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { am.Shutdown() })
	return am
}

func TestInitializeRejectsMissingDir(t *testing.T) {
	am, err := NewAssetManager()
	if err != nil {
		t.Fatal(err)
	}
	defer am.Shutdown()
	err = am.Initialize(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestIndexAndResolve(t *testing.T) {
	am := newTestManager(t)

	if got := am.Count(); got != 8 {
		t.Errorf("Count = %d, want 8", got)
	}
	if got := len(am.Assets(metadata.ResourceTypeImage)); got != 3 {
		t.Errorf("image assets = %d, want 3", got)
	}
	if !am.Exists("hero", metadata.ResourceTypeImage) {
		t.Error("hero not resolved by name")
	}
	if !am.Exists("maps/terrain.png", metadata.ResourceTypeImage) {
		t.Error("relative path not resolved")
	}
	if am.Exists("hero", metadata.ResourceTypeShader) {
		t.Error("hero resolved as a shader")
	}
}

func TestLoadImage(t *testing.T) {
	am := newTestManager(t)

	res, err := am.Load("hero", metadata.ResourceTypeImage, nil)
	if err != nil {
		t.Fatal(err)
	}
	img := res.Data.(*metadata.ImageResourceData)
	if img.Width != 4 || img.Height != 2 || img.ChannelCount != 4 {
		t.Errorf("image = %dx%dx%d, want 4x2x4", img.Width, img.Height, img.ChannelCount)
	}
	if len(img.Pixels) != 4*2*4 {
		t.Errorf("pixels = %d bytes, want 32", len(img.Pixels))
	}
	if !img.HasTransparency {
		t.Error("half-transparent image reported opaque")
	}
	if err := am.Unload(res); err != nil {
		t.Errorf("Unload: %v", err)
	}
	if res.Data != nil {
		t.Error("Unload kept the data")
	}
}

func TestLoadMissing(t *testing.T) {
	am := newTestManager(t)

	_, err := am.Load("nope", metadata.ResourceTypeImage, nil)
	if !errors.Is(err, core.ErrResourceNotFound) {
		t.Errorf("err = %v, want ErrResourceNotFound", err)
	}
}

func TestLoadShaderConfig(t *testing.T) {
	am := newTestManager(t)

	res, err := am.Load("tinted", metadata.ResourceTypeShader, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg := res.Data.(*metadata.ShaderConfig)
	if cfg.Name != "Shader.Tinted" {
		t.Errorf("Name = %q, want Shader.Tinted", cfg.Name)
	}
	if len(cfg.Attributes) != 2 || cfg.Attributes[1].ShaderAttributeType != metadata.ShaderAttribTypeFloat32_4 {
		t.Errorf("attributes = %+v", cfg.Attributes)
	}
	if len(cfg.Uniforms) != 1 || cfg.Uniforms[0].ShaderUniformType != metadata.ShaderUniformTypeMatrix4 {
		t.Errorf("uniforms = %+v", cfg.Uniforms)
	}
	if cfg.VertexSource == "" || cfg.FragmentSource == "" {
		t.Error("stage sources not read")
	}
}

func TestLoadBitmapFont(t *testing.T) {
	am := newTestManager(t)

	res, err := am.Load("test", metadata.ResourceTypeBitmapFont, nil)
	if err != nil {
		t.Fatal(err)
	}
	fd := res.Data.(*metadata.BitmapFontResourceData)
	if fd.Data.Face != "Test" || fd.Data.LineHeight != 18 || fd.Data.Baseline != 14 {
		t.Errorf("font = %+v", fd.Data)
	}
	a, ok := fd.Data.Glyphs['A']
	if !ok {
		t.Fatal("glyph A missing")
	}
	if a.Width != 8 || a.XAdvance != 9 {
		t.Errorf("glyph A = %+v", a)
	}
	if k := fd.Data.Kernings[[2]int32{'A', 'A'}]; k != -1 {
		t.Errorf("kerning AA = %d, want -1", k)
	}
	if fd.Data.TabXAdvance != 16 {
		t.Errorf("TabXAdvance = %f, want 16", fd.Data.TabXAdvance)
	}
	if len(fd.Pages) != 1 || fd.Pages[0].Name != "fonts/test_0.png" {
		t.Errorf("pages = %+v", fd.Pages)
	}
}

func TestLoadTileMap(t *testing.T) {
	am := newTestManager(t)

	res, err := am.Load("level", metadata.ResourceTypeTileMap, nil)
	if err != nil {
		t.Fatal(err)
	}
	m := res.Data.(*metadata.TileMapResourceData)
	if m.Width != 2 || m.Height != 2 || m.TileWidth != 16 {
		t.Errorf("map = %dx%d tile %d", m.Width, m.Height, m.TileWidth)
	}
	if len(m.Tiles) != 3 {
		t.Fatalf("tiles = %d, want 3", len(m.Tiles))
	}
	if len(m.TilesetImages) != 1 || m.TilesetImages[0] != "maps/terrain.png" {
		t.Errorf("tileset images = %v", m.TilesetImages)
	}
	last := m.Tiles[2]
	if last.Column != 1 || last.Row != 1 {
		t.Errorf("last tile at (%d,%d), want (1,1)", last.Column, last.Row)
	}
	if last.SourceX != 16 || last.SourceY != 16 || last.SourceWidth != 16 {
		t.Errorf("last tile source = (%d,%d,%d)", last.SourceX, last.SourceY, last.SourceWidth)
	}
	if !last.FlipX || last.FlipY {
		t.Errorf("last tile flips = %v,%v, want true,false", last.FlipX, last.FlipY)
	}
}

func TestWatcherIndexesNewFiles(t *testing.T) {
	am := newTestManager(t)

	writePNG(t, filepath.Join(am.Root(), "textures", "late.png"), 1, 1, color.NRGBA{A: 255})

	deadline := time.Now().Add(3 * time.Second)
	for !am.Exists("late", metadata.ResourceTypeImage) {
		if time.Now().After(deadline) {
			t.Fatal("new file never indexed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := os.Remove(filepath.Join(am.Root(), "textures", "late.png")); err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(3 * time.Second)
	for am.Exists("late", metadata.ResourceTypeImage) {
		if time.Now().After(deadline) {
			t.Fatal("removed file still indexed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	am := newTestManager(t)
	if err := am.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := am.Shutdown(); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}
