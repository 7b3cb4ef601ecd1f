package assets

import "github.com/spaghettifunk/anima2d/engine/renderer/metadata"

type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) // `interface{}` here allows loaders to return various asset types
	Unload(*metadata.Resource) error
}

// location describes where named resources of a type live under the asset
// root and which extensions are tried, in order.
type location struct {
	dir        string
	extensions []string
}

var locations = map[metadata.ResourceType]location{
	metadata.ResourceTypeImage:      {dir: "textures", extensions: []string{".png", ".jpg", ".jpeg", ".bmp"}},
	metadata.ResourceTypeShader:     {dir: "shaders", extensions: []string{".shadercfg"}},
	metadata.ResourceTypeBitmapFont: {dir: "fonts", extensions: []string{".fnt"}},
	metadata.ResourceTypeTileMap:    {dir: "maps", extensions: []string{".tmx"}},
}

func determineAssetType(path string) metadata.ResourceType {
	switch extension(path) {
	case ".shadercfg":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".bmp":
		return metadata.ResourceTypeImage
	case ".fnt":
		return metadata.ResourceTypeBitmapFont
	case ".tmx":
		return metadata.ResourceTypeTileMap
	case ".vert", ".frag", ".glsl", ".txt", ".toml":
		return metadata.ResourceTypeText
	default:
		return metadata.ResourceTypeBinary
	}
}
