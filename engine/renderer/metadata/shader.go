package metadata

import "fmt"

const (
	/** @brief The name of the builtin sprite shader. */
	BUILTIN_SHADER_NAME_SPRITE string = "Shader.Builtin.Sprite"

	UNIFORM_PROJECTION string = "u_projection"
	UNIFORM_VIEW       string = "u_view"
	UNIFORM_TEXTURE    string = "u_texture"
)

/**
 * @brief Represents the current state of a given shader.
 */
type ShaderState int

const (
	/** @brief The shader has not yet gone through the creation process, and is unusable.*/
	SHADER_STATE_NOT_CREATED ShaderState = iota
	/** @brief The shader program is linked and ready for use.*/
	SHADER_STATE_INITIALIZED
)

/** @brief The pipeline stages a shader config can provide. */
type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageFragment ShaderStage = 0x00000004
)

/** @brief Available attribute types. */
type ShaderAttributeType uint

const (
	ShaderAttribTypeFloat32   ShaderAttributeType = 0
	ShaderAttribTypeFloat32_2 ShaderAttributeType = 1
	ShaderAttribTypeFloat32_3 ShaderAttributeType = 2
	ShaderAttribTypeFloat32_4 ShaderAttributeType = 3
	ShaderAttribTypeMatrix4   ShaderAttributeType = 4
	ShaderAttribTypeInt32     ShaderAttributeType = 9
)

func ShaderAttributeTypeFromString(s string) (ShaderAttributeType, error) {
	switch s {
	case "f32":
		return ShaderAttribTypeFloat32, nil
	case "vec2":
		return ShaderAttribTypeFloat32_2, nil
	case "vec3":
		return ShaderAttribTypeFloat32_3, nil
	case "vec4":
		return ShaderAttribTypeFloat32_4, nil
	case "mat4":
		return ShaderAttribTypeMatrix4, nil
	case "i32":
		return ShaderAttribTypeInt32, nil
	}
	return 0, fmt.Errorf("string %s is not a valid ShaderAttribType", s)
}

// Components is the number of float32 slots the attribute occupies.
func (t ShaderAttributeType) Components() int32 {
	switch t {
	case ShaderAttribTypeFloat32_2:
		return 2
	case ShaderAttribTypeFloat32_3:
		return 3
	case ShaderAttribTypeFloat32_4:
		return 4
	case ShaderAttribTypeMatrix4:
		return 16
	}
	return 1
}

/** @brief Available uniform types. */
type ShaderUniformType uint

const (
	ShaderUniformTypeFloat32   ShaderUniformType = 0
	ShaderUniformTypeFloat32_4 ShaderUniformType = 3
	ShaderUniformTypeInt32     ShaderUniformType = 8
	ShaderUniformTypeMatrix4   ShaderUniformType = 10
	ShaderUniformTypeSampler   ShaderUniformType = 11
)

func ShaderUniformTypeFromString(s string) (ShaderUniformType, error) {
	switch s {
	case "f32":
		return ShaderUniformTypeFloat32, nil
	case "vec4":
		return ShaderUniformTypeFloat32_4, nil
	case "i32":
		return ShaderUniformTypeInt32, nil
	case "mat4":
		return ShaderUniformTypeMatrix4, nil
	case "samp":
		return ShaderUniformTypeSampler, nil
	}
	return 0, fmt.Errorf("string %s is not a valid ShaderUniformType", s)
}

/** @brief Configuration for an attribute. */
type ShaderAttributeConfig struct {
	/** @brief The name of the attribute. */
	Name string `toml:"name"`
	/** @brief The type name as written in the config, e.g. "vec3". */
	TypeName string `toml:"type"`
	/** @brief The type of the attribute, resolved from TypeName. */
	ShaderAttributeType ShaderAttributeType `toml:"-"`
}

/** @brief Configuration for a uniform. */
type ShaderUniformConfig struct {
	/** @brief The name of the uniform. */
	Name string `toml:"name"`
	/** @brief The type name as written in the config, e.g. "mat4". */
	TypeName string `toml:"type"`
	/** @brief The type of the uniform, resolved from TypeName. */
	ShaderUniformType ShaderUniformType `toml:"-"`
}

/**
 * @brief Configuration for a shader. Typically created by the shader
 * resource loader, and set to the properties found in a .shadercfg
 * resource file. Sources are filled either from the stage files or
 * directly for builtin shaders.
 */
type ShaderConfig struct {
	/** @brief The name of the shader to be created. */
	Name string `toml:"name"`
	/** @brief The collection of attributes. */
	Attributes []*ShaderAttributeConfig `toml:"attributes"`
	/** @brief The collection of uniforms. */
	Uniforms []*ShaderUniformConfig `toml:"uniforms"`
	/** @brief Stage file names relative to the config file. */
	VertexFile   string `toml:"vertex"`
	FragmentFile string `toml:"fragment"`

	VertexSource   string `toml:"-"`
	FragmentSource string `toml:"-"`
}

/**
 * @brief Represents a shader on the frontend.
 */
type Shader struct {
	/** @brief The shader identifier */
	ID uint32
	Name string
	/** @brief The linked program handle on the backend. */
	Handle Handle
	State  ShaderState
	/** @brief Uniform name to type, as declared by the config. */
	Uniforms map[string]ShaderUniformType
}
