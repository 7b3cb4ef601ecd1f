package loaders

import (
	"os"

	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// BinaryLoader reads a file verbatim. Text resources are the same bytes
// returned as a string.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data interface{} = buf
	if assetType == metadata.ResourceTypeText {
		data = string(buf)
	}

	return &metadata.Resource{
		Name:     path,
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     data,
	}, nil
}

func (bl *BinaryLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
