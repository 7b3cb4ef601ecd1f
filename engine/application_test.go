package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadApplicationConfigDefaults(t *testing.T) {
	config, err := LoadApplicationConfig(writeConfig(t, `name = "demo"`))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultApplicationConfig()
	want.Name = "demo"
	if config.StartWidth != want.StartWidth || config.Backend != want.Backend || !config.VSync || config.AssetDir != "assets" {
		t.Errorf("config = %+v, want defaults", config)
	}
	if config.Name != "demo" {
		t.Errorf("Name = %q, want demo", config.Name)
	}
}

func TestLoadApplicationConfigOverrides(t *testing.T) {
	config, err := LoadApplicationConfig(writeConfig(t, `
name = "rpg"
start_width = 640
start_height = 360
backend = "ebiten"
vsync = false
log_level = "debug"
texture_filter = "linear"
clear_colour = [0.0, 0.5, 1.0, 1.0]

[camera]
x = 64.0
y = 32.0
zoom = 2.0

[[fonts]]
name = "ui"
resource = "fonts/ui.fnt"
size = 21
`))
	if err != nil {
		t.Fatal(err)
	}
	if config.StartWidth != 640 || config.StartHeight != 360 || config.VSync {
		t.Errorf("window = %dx%d vsync=%v", config.StartWidth, config.StartHeight, config.VSync)
	}
	if config.Backend != metadata.RendererBackendEbiten {
		t.Errorf("Backend = %q, want ebiten", config.Backend)
	}
	if config.Level() != core.DebugLevel {
		t.Errorf("Level = %v, want debug", config.Level())
	}
	if f, _ := config.Filter(); f != metadata.TextureFilterModeLinear {
		t.Errorf("Filter = %v, want linear", f)
	}
	if c := config.Clear(); c.Y != 0.5 || c.Z != 1 {
		t.Errorf("Clear = %v", c)
	}
	if config.Camera != (CameraConfig{X: 64, Y: 32, Zoom: 2}) {
		t.Errorf("Camera = %+v", config.Camera)
	}
	fonts := config.BitmapFonts()
	if len(fonts) != 1 || fonts[0].Name != "ui" || fonts[0].ResourceName != "fonts/ui.fnt" || fonts[0].Size != 21 {
		t.Errorf("fonts = %+v", fonts)
	}
}

func TestLoadApplicationConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"zero width", `start_width = 0`, core.ErrInvalidConfiguration},
		{"unknown backend", `backend = "vulkan"`, core.ErrUnknownBackend},
		{"bad filter", `texture_filter = "cubic"`, core.ErrInvalidConfiguration},
		{"bad level", `log_level = "loud"`, core.ErrInvalidConfiguration},
		{"zero zoom", "[camera]\nzoom = 0.0", core.ErrInvalidConfiguration},
		{"font without resource", "[[fonts]]\nname = \"ui\"", core.ErrInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadApplicationConfig(writeConfig(t, tt.content)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := LoadApplicationConfig(writeConfig(t, `name = [`)); err == nil {
		t.Error("malformed TOML accepted")
	}
	if _, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file accepted")
	}
}
