package loaders

import (
	"fmt"
	"path/filepath"

	"github.com/lafriks/go-tiled"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// TileMapLoader flattens a Tiled .tmx map into placed tiles. Only tile
// layers are read; object and image layers are ignored.
type TileMapLoader struct {
	ResourcePath string
}

func (tl *TileMapLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	levelMap, err := tiled.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tile map '%s': %w", path, err)
	}

	data := &metadata.TileMapResourceData{
		Width:      levelMap.Width,
		Height:     levelMap.Height,
		TileWidth:  levelMap.TileWidth,
		TileHeight: levelMap.TileHeight,
	}

	dir := filepath.Dir(path)
	seen := make(map[string]bool)

	for layerIndex, layer := range levelMap.Layers {
		if !layer.Visible {
			continue
		}
		for i, tile := range layer.Tiles {
			if tile.IsNil() || tile.Tileset == nil || tile.Tileset.Image == nil {
				continue
			}

			image := tl.relative(filepath.Join(dir, tile.Tileset.Image.Source))
			if !seen[image] {
				seen[image] = true
				data.TilesetImages = append(data.TilesetImages, image)
			}

			rect := tile.Tileset.GetTileRect(tile.ID)
			data.Tiles = append(data.Tiles, metadata.TileInstance{
				Column:       i % levelMap.Width,
				Row:          i / levelMap.Width,
				TilesetImage: image,
				SourceX:      rect.Min.X,
				SourceY:      rect.Min.Y,
				SourceWidth:  rect.Dx(),
				SourceHeight: rect.Dy(),
				FlipX:        tile.HorizontalFlip,
				FlipY:        tile.VerticalFlip,
				Layer:        layerIndex,
			})
		}
	}

	return &metadata.Resource{
		Name:     path,
		FullPath: path,
		DataSize: uint64(len(data.Tiles)),
		Data:     data,
	}, nil
}

func (tl *TileMapLoader) relative(path string) string {
	if tl.ResourcePath != "" {
		if rel, err := filepath.Rel(tl.ResourcePath, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

func (tl *TileMapLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
