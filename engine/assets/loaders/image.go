package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

type ImageLoader struct{}

// decodeRGBA decodes any registered format and repacks it as tightly packed RGBA8.
func decodeRGBA(path string, flipY bool) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image '%s': %w", path, err)
	}

	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	if flipY {
		row := make([]uint8, dst.Stride)
		h := dst.Bounds().Dy()
		for y := 0; y < h/2; y++ {
			top := dst.Pix[y*dst.Stride : (y+1)*dst.Stride]
			bottom := dst.Pix[(h-1-y)*dst.Stride : (h-y)*dst.Stride]
			copy(row, top)
			copy(top, bottom)
			copy(bottom, row)
		}
	}
	return dst, nil
}

func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	flip := false
	if typedParams, ok := params.(*metadata.ImageResourceParams); ok && typedParams != nil {
		flip = typedParams.FlipY
	}

	img, err := decodeRGBA(path, flip)
	if err != nil {
		return nil, err
	}

	transparent := false
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] < 255 {
			transparent = true
			break
		}
	}

	return &metadata.Resource{
		Name:     path,
		FullPath: path,
		DataSize: uint64(len(img.Pix)),
		Data: &metadata.ImageResourceData{
			ChannelCount:    4,
			Width:           uint32(img.Bounds().Dx()),
			Height:          uint32(img.Bounds().Dy()),
			Pixels:          img.Pix,
			HasTransparency: transparent,
		},
	}, nil
}

func (il *ImageLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
