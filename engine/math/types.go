package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector. Colours use it as RGBA.
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief a 4x4 matrix, typically used to represent object transformations. */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief An axis-aligned rectangle. X and Y are the top-left corner in a
 * Y-down coordinate space.
 */
type Rect struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

/**
 * @brief Represents the placement of an object in the 2d world.
 * The matrix is rebuilt lazily from position, rotation and scale
 * whenever IsDirty is set by one of the setters.
 */
type Transform struct {
	/** @brief The position in the world. */
	Position Vec2
	/** @brief The rotation in degrees. */
	Rotation float32
	/** @brief The scale in the world. */
	Scale Vec2
	/**
	 * @brief Indicates if the position, rotation or scale have changed,
	 * indicating that the local matrix needs to be recalculated.
	 */
	IsDirty bool
	/** @brief The local transformation matrix. */
	Local Mat4
	/** @brief A parent transform if one is assigned. Can also be nil. */
	Parent *Transform
}
