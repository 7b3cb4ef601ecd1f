package systems

import (
	_ "embed"
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

//go:embed shaders/sprite.vert
var spriteVertexSource string

//go:embed shaders/sprite.frag
var spriteFragmentSource string

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint16
}

type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->shader
	Lookup map[string]*metadata.Shader
	// The name of the currently bound shader.
	CurrentShader string

	nextID uint32
	// sub systems
	assetManager AssetLoader
	graphics     renderer.GraphicsAPI
}

// SpriteShaderConfig describes the builtin sprite program.
func SpriteShaderConfig() *metadata.ShaderConfig {
	return &metadata.ShaderConfig{
		Name: metadata.BUILTIN_SHADER_NAME_SPRITE,
		Attributes: []*metadata.ShaderAttributeConfig{
			{Name: "a_position", TypeName: "vec3", ShaderAttributeType: metadata.ShaderAttribTypeFloat32_3},
			{Name: "a_colour", TypeName: "vec4", ShaderAttributeType: metadata.ShaderAttribTypeFloat32_4},
			{Name: "a_texcoord", TypeName: "vec2", ShaderAttributeType: metadata.ShaderAttribTypeFloat32_2},
		},
		Uniforms: []*metadata.ShaderUniformConfig{
			{Name: metadata.UNIFORM_PROJECTION, TypeName: "mat4", ShaderUniformType: metadata.ShaderUniformTypeMatrix4},
			{Name: metadata.UNIFORM_VIEW, TypeName: "mat4", ShaderUniformType: metadata.ShaderUniformTypeMatrix4},
			{Name: metadata.UNIFORM_TEXTURE, TypeName: "samp", ShaderUniformType: metadata.ShaderUniformTypeSampler},
		},
		VertexSource:   spriteVertexSource,
		FragmentSource: spriteFragmentSource,
	}
}

func NewShaderSystem(config *ShaderSystemConfig, am AssetLoader, graphics renderer.GraphicsAPI) (*ShaderSystem, error) {
	// Verify configuration.
	if config == nil || config.MaxShaderCount == 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0: %w", core.ErrInvalidConfiguration)
		core.LogError("%s", err)
		return nil, err
	}
	if graphics == nil {
		err := fmt.Errorf("NewShaderSystem: %w", core.ErrMissingGraphicsAPI)
		core.LogError("%s", err)
		return nil, err
	}

	return &ShaderSystem{
		Config:       config,
		Lookup:       make(map[string]*metadata.Shader),
		assetManager: am,
		graphics:     graphics,
	}, nil
}

// Initialize compiles the builtin shaders.
func (shaderSystem *ShaderSystem) Initialize() error {
	if _, err := shaderSystem.Create(SpriteShaderConfig()); err != nil {
		return err
	}
	return nil
}

/**
 * @brief Shuts down the shader system and destroys every program.
 */
func (shaderSystem *ShaderSystem) Shutdown() error {
	for name := range shaderSystem.Lookup {
		shaderSystem.Destroy(name)
	}
	shaderSystem.CurrentShader = ""
	return nil
}

/**
 * @brief Creates a new shader with the given config.
 *
 * @param config The configuration to be used when creating the shader.
 * @return The created shader, or an error if compilation or linking failed.
 */
func (shaderSystem *ShaderSystem) Create(config *metadata.ShaderConfig) (*metadata.Shader, error) {
	if config == nil || config.Name == "" {
		return nil, fmt.Errorf("shader config has no name: %w", core.ErrInvalidConfiguration)
	}
	if _, ok := shaderSystem.Lookup[config.Name]; ok {
		return nil, fmt.Errorf("shader '%s' already exists: %w", config.Name, core.ErrInvalidConfiguration)
	}
	if len(shaderSystem.Lookup) >= int(shaderSystem.Config.MaxShaderCount) {
		err := fmt.Errorf("shader system cannot hold '%s', adjust configuration to allow more: %w", config.Name, core.ErrInvalidConfiguration)
		core.LogError("%s", err)
		return nil, err
	}

	handle, err := shaderSystem.graphics.CreateShader(config.VertexSource, config.FragmentSource)
	if err != nil {
		core.LogError("failed to create shader '%s': %s", config.Name, err)
		return nil, err
	}
	if !handle.IsValid() {
		return nil, fmt.Errorf("shader '%s': %w", config.Name, core.ErrInvalidHandle)
	}

	shaderSystem.nextID++
	shader := &metadata.Shader{
		ID:       shaderSystem.nextID,
		Name:     config.Name,
		Handle:   handle,
		State:    metadata.SHADER_STATE_INITIALIZED,
		Uniforms: make(map[string]metadata.ShaderUniformType, len(config.Uniforms)),
	}
	for _, u := range config.Uniforms {
		shader.Uniforms[u.Name] = u.ShaderUniformType
	}
	shaderSystem.Lookup[config.Name] = shader

	core.LogDebug("shader '%s' created", config.Name)
	return shader, nil
}

/**
 * @brief Loads a .shadercfg through the asset manager and creates the shader
 * it describes. An already created shader is returned as is.
 */
func (shaderSystem *ShaderSystem) Load(name string) (*metadata.Shader, error) {
	if shaderSystem.assetManager == nil {
		return nil, fmt.Errorf("shader '%s': %w", name, core.ErrResourceNotFound)
	}
	resource, err := shaderSystem.assetManager.Load(name, metadata.ResourceTypeShader, nil)
	if err != nil {
		return nil, err
	}
	defer shaderSystem.assetManager.Unload(resource)

	config, ok := resource.Data.(*metadata.ShaderConfig)
	if !ok {
		return nil, fmt.Errorf("resource '%s' is not a shader config", name)
	}
	if shader, ok := shaderSystem.Lookup[config.Name]; ok {
		return shader, nil
	}
	return shaderSystem.Create(config)
}

/**
 * @brief Gets a shader by name.
 */
func (shaderSystem *ShaderSystem) Get(name string) (*metadata.Shader, error) {
	shader, ok := shaderSystem.Lookup[name]
	if !ok {
		return nil, fmt.Errorf("shader '%s': %w", name, core.ErrResourceNotFound)
	}
	return shader, nil
}

/**
 * @brief Binds the shader with the given name.
 */
func (shaderSystem *ShaderSystem) Use(name string) error {
	shader, err := shaderSystem.Get(name)
	if err != nil {
		core.LogError("shader use failed: %s", err)
		return err
	}
	shaderSystem.graphics.UseShader(shader.Handle)
	shaderSystem.CurrentShader = name
	return nil
}

func (shaderSystem *ShaderSystem) Destroy(name string) {
	shader, ok := shaderSystem.Lookup[name]
	if !ok {
		return
	}
	shaderSystem.graphics.DeleteShader(shader.Handle)
	shader.Handle = metadata.InvalidHandle
	shader.State = metadata.SHADER_STATE_NOT_CREATED
	delete(shaderSystem.Lookup, name)
	if shaderSystem.CurrentShader == name {
		shaderSystem.CurrentShader = ""
	}
}
