package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

type FontConfig struct {
	Name     string `toml:"name"`
	Resource string `toml:"resource"`
	Size     uint16 `toml:"size"`
}

// CameraConfig is applied to the default camera at startup.
type CameraConfig struct {
	X    float32 `toml:"x"`
	Y    float32 `toml:"y"`
	Zoom float32 `toml:"zoom"`
}

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// One of debug, info, warn, error.
	LogLevel string                       `toml:"log_level"`
	Backend  metadata.RendererBackendType `toml:"backend"`
	VSync    bool                         `toml:"vsync"`
	// RGBA in [0,1].
	ClearColour [4]float32 `toml:"clear_colour"`
	// Relative to the working directory unless absolute.
	AssetDir string `toml:"asset_dir"`
	// nearest or linear.
	TextureFilter string       `toml:"texture_filter"`
	JobWorkers    int          `toml:"job_workers"`
	Fonts         []FontConfig `toml:"fonts"`
	Camera        CameraConfig `toml:"camera"`
}

// DefaultApplicationConfig is what a missing or partial config file falls back to.
func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:          "anima2d",
		StartPosX:     100,
		StartPosY:     100,
		StartWidth:    1280,
		StartHeight:   720,
		LogLevel:      "info",
		Backend:       metadata.RendererBackendOpenGL,
		VSync:         true,
		ClearColour:   [4]float32{0.1, 0.1, 0.12, 1},
		AssetDir:      "assets",
		TextureFilter: "nearest",
		Camera:        CameraConfig{Zoom: 1},
	}
}

// LoadApplicationConfig reads a TOML file over the defaults, so only the
// keys present in the file change anything.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read application config '%s': %w", path, err)
	}
	config := DefaultApplicationConfig()
	if err := toml.Unmarshal(content, config); err != nil {
		return nil, fmt.Errorf("failed to parse application config '%s': %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("window size %dx%d: %w", c.StartWidth, c.StartHeight, core.ErrInvalidConfiguration)
	}
	switch c.Backend {
	case metadata.RendererBackendOpenGL, metadata.RendererBackendEbiten:
	default:
		return fmt.Errorf("backend '%s': %w", c.Backend, core.ErrUnknownBackend)
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level '%s': %w", c.LogLevel, core.ErrInvalidConfiguration)
	}
	if _, err := c.Filter(); err != nil {
		return err
	}
	if c.Camera.Zoom <= 0 {
		return fmt.Errorf("camera zoom %f: %w", c.Camera.Zoom, core.ErrInvalidConfiguration)
	}
	for _, f := range c.Fonts {
		if f.Name == "" || f.Resource == "" {
			return fmt.Errorf("font entries need a name and a resource: %w", core.ErrInvalidConfiguration)
		}
	}
	return nil
}

func (c *ApplicationConfig) Level() core.LogLevel {
	level, err := core.ParseLogLevel(c.LogLevel)
	if err != nil {
		return core.InfoLevel
	}
	return level
}

func (c *ApplicationConfig) Filter() (metadata.TextureFilter, error) {
	switch c.TextureFilter {
	case "", "nearest":
		return metadata.TextureFilterModeNearest, nil
	case "linear":
		return metadata.TextureFilterModeLinear, nil
	}
	return metadata.TextureFilterModeNearest, fmt.Errorf("texture filter '%s': %w", c.TextureFilter, core.ErrInvalidConfiguration)
}

func (c *ApplicationConfig) Clear() math.Vec4 {
	return math.NewVec4(c.ClearColour[0], c.ClearColour[1], c.ClearColour[2], c.ClearColour[3])
}

func (c *ApplicationConfig) BitmapFonts() []*metadata.BitmapFontConfig {
	fonts := make([]*metadata.BitmapFontConfig, 0, len(c.Fonts))
	for _, f := range c.Fonts {
		fonts = append(fonts, &metadata.BitmapFontConfig{Name: f.Name, ResourceName: f.Resource, Size: f.Size})
	}
	return fonts
}
