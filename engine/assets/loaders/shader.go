package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// ShaderLoader reads a .shadercfg TOML file and the GLSL stage files it names.
//
//	name = "Shader.Tinted"
//	vertex = "tinted.vert"
//	fragment = "tinted.frag"
//
//	[[attributes]]
//	name = "a_position"
//	type = "vec3"
type ShaderLoader struct {
	text BinaryLoader
}

func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &metadata.ShaderConfig{}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse shader config '%s': %w", path, err)
	}
	if config.Name == "" {
		return nil, fmt.Errorf("shader config '%s' has no name", path)
	}

	for _, a := range config.Attributes {
		t, err := metadata.ShaderAttributeTypeFromString(a.TypeName)
		if err != nil {
			return nil, fmt.Errorf("shader config '%s' attribute '%s': %w", path, a.Name, err)
		}
		a.ShaderAttributeType = t
	}
	for _, u := range config.Uniforms {
		t, err := metadata.ShaderUniformTypeFromString(u.TypeName)
		if err != nil {
			return nil, fmt.Errorf("shader config '%s' uniform '%s': %w", path, u.Name, err)
		}
		u.ShaderUniformType = t
	}

	// Stage files are resolved next to the config file.
	dir := filepath.Dir(path)
	if config.VertexSource, err = sl.readStage(dir, config.VertexFile); err != nil {
		return nil, err
	}
	if config.FragmentSource, err = sl.readStage(dir, config.FragmentFile); err != nil {
		return nil, err
	}

	return &metadata.Resource{
		Name:     config.Name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     config,
	}, nil
}

func (sl *ShaderLoader) readStage(dir, file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("shader config is missing a stage file")
	}
	res, err := sl.text.Load(filepath.Join(dir, file), metadata.ResourceTypeText, nil)
	if err != nil {
		return "", err
	}
	return res.Data.(string), nil
}

func (sl *ShaderLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
