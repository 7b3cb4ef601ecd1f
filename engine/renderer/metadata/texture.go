package metadata

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief A 1x1 opaque white texture used for solid fills. */
	WHITE_TEXTURE_NAME string = "white"
)

type TextureReference struct {
	ReferenceCount uint64
	Texture        *Texture
	AutoRelease    bool
}

// TextureLoadParams is passed through the job system while an image decodes.
type TextureLoadParams struct {
	ResourceName  string
	OutTexture    *Texture
	ImageResource *Resource
	Err           error
}

type TextureFlag int

const (
	/** @brief Indicates if the texture has transparency. */
	TextureFlagHasTransparency TextureFlag = 0x1
	/** @brief Indicates if the texture can be written (rendered) to. */
	TextureFlagIsWriteable TextureFlag = 0x2
	/** @brief Indicates the pixels are still decoding and the default texture stands in. */
	TextureFlagIsLoading TextureFlag = 0x4
)

/** @brief Holds bit flags for textures.. */
type TextureFlagBits uint8

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uint32
	/** @brief The GPU handle returned by the graphics backend. */
	Handle Handle
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Holds various Flags for this texture. */
	Flags TextureFlagBits
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief The texture Name. */
	Name string
	Filter TextureFilter
	Repeat TextureRepeat
}

// IsValid reports a texture that can be sampled: non-nil, uploaded and non-empty.
func (t *Texture) IsValid() bool {
	return t != nil && t.Handle.IsValid() && t.Width > 0 && t.Height > 0
}

func (t *Texture) HasFlag(flag TextureFlag) bool {
	return t.Flags&TextureFlagBits(flag) != 0
}

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

type TextureRepeat int

const (
	TextureRepeatClampToEdge    TextureRepeat = 0x0
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMirroredRepeat TextureRepeat = 0x2
)

/** @brief Parameters for CreateTexture on a backend. */
type TextureConfig struct {
	Width  uint32
	Height uint32
	Filter TextureFilter
	Repeat TextureRepeat
}
