package loaders

import (
	"fmt"
	"path/filepath"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// BitmapFontLoader imports AngelCode .fnt descriptors. Page images are
// reported relative to ResourcePath so they can be acquired as textures.
type BitmapFontLoader struct {
	ResourcePath string
}

func (fl *BitmapFontLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	rd, err := fl.importFNTFile(path)
	if err != nil {
		return nil, err
	}

	return &metadata.Resource{
		Name:     rd.Data.Face,
		FullPath: path,
		Data:     rd,
		DataSize: uint64(len(rd.Data.Glyphs)),
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *metadata.Resource) error {
	if resource.Data != nil {
		if data, ok := resource.Data.(*metadata.BitmapFontResourceData); ok && data.Data != nil {
			data.Data.Glyphs = nil
			data.Data.Kernings = nil
			data.Pages = nil
		}
		resource.Data = nil
		resource.DataSize = 0
		resource.FullPath = ""
	}
	return nil
}

func (fl *BitmapFontLoader) importFNTFile(fntFileName string) (*metadata.BitmapFontResourceData, error) {
	font, err := bmfont.Load(fntFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to import bitmap font '%s': %w", fntFileName, err)
	}
	desc := font.Descriptor

	outData := &metadata.BitmapFontResourceData{
		Data: &metadata.FontData{
			Face:       desc.Info.Face,
			Size:       uint32(desc.Info.Size),
			LineHeight: int32(desc.Common.LineHeight),
			Baseline:   int32(desc.Common.Base),
			AtlasSizeX: int32(desc.Common.ScaleW),
			AtlasSizeY: int32(desc.Common.ScaleH),
			Glyphs:     make(map[int32]*metadata.FontGlyph, len(desc.Chars)),
			Kernings:   make(map[[2]int32]int16, len(desc.Kerning)),
		},
		Pages: make([]*metadata.BitmapFontPage, 0, len(desc.Pages)),
	}

	dir := filepath.Dir(fntFileName)
	for _, p := range desc.Pages {
		name := filepath.Join(dir, p.File)
		if fl.ResourcePath != "" {
			if rel, err := filepath.Rel(fl.ResourcePath, name); err == nil {
				name = rel
			}
		}
		outData.Pages = append(outData.Pages, &metadata.BitmapFontPage{
			ID:   int8(p.ID),
			Name: filepath.ToSlash(name),
		})
	}

	for _, g := range desc.Chars {
		outData.Data.Glyphs[int32(g.ID)] = &metadata.FontGlyph{
			Codepoint: int32(g.ID),
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		}
	}

	for p, k := range desc.Kerning {
		outData.Data.Kernings[[2]int32{int32(p.First), int32(p.Second)}] = int16(k.Amount)
	}

	// A tab is four spaces wide, or four times the nominal size without a space glyph.
	if space, ok := outData.Data.Glyphs[' ']; ok {
		outData.Data.TabXAdvance = float32(space.XAdvance) * 4
	} else {
		outData.Data.TabXAdvance = float32(outData.Data.Size) * 4
	}

	return outData, nil
}
