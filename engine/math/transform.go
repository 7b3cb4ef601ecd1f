package math

func TransformCreate() *Transform {
	return TransformFromPositionRotationScale(NewVec2Zero(), 0, NewVec2One())
}

func TransformFromPosition(position Vec2) *Transform {
	return TransformFromPositionRotationScale(position, 0, NewVec2One())
}

func TransformFromPositionRotationScale(position Vec2, rotation float32, scale Vec2) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	t.Local = NewMat4Identity()
	t.Parent = nil
	return t
}

func (t *Transform) GetParent() *Transform {
	return t.Parent
}

func (t *Transform) SetParent(parent *Transform) {
	t.Parent = parent
}

func (t *Transform) SetPosition(position Vec2) {
	t.Position = position
	t.IsDirty = true
}

func (t *Transform) Translate(translation Vec2) {
	t.Position = t.Position.Add(translation)
	t.IsDirty = true
}

// SetRotation stores degrees normalized into [0, 360).
func (t *Transform) SetRotation(degrees float32) {
	t.Rotation = NormalizeDegrees(degrees)
	t.IsDirty = true
}

func (t *Transform) Rotate(degrees float32) {
	t.SetRotation(t.Rotation + degrees)
}

func (t *Transform) SetScale(scale Vec2) {
	t.Scale = scale
	t.IsDirty = true
}

func (t *Transform) SetPositionRotationScale(position Vec2, rotation float32, scale Vec2) {
	t.Position = position
	t.Rotation = NormalizeDegrees(rotation)
	t.Scale = scale
	t.IsDirty = true
}

// GetLocal rebuilds the scale, rotate, translate matrix when dirty.
func (t *Transform) GetLocal() Mat4 {
	if t.IsDirty {
		s := NewMat4Scale(Vec3{t.Scale.X, t.Scale.Y, 1})
		r := NewMat4EulerZ(DegToRad(t.Rotation))
		tr := NewMat4Translation(Vec3{t.Position.X, t.Position.Y, 0})
		t.Local = s.Mul(r).Mul(tr)
		t.IsDirty = false
	}
	return t.Local
}

// GetWorld combines the local matrix with every parent up the chain.
func (t *Transform) GetWorld() Mat4 {
	l := t.GetLocal()
	if t.Parent != nil {
		return l.Mul(t.Parent.GetWorld())
	}
	return l
}

// WorldPosition is the transform origin after applying the parent chain.
func (t *Transform) WorldPosition() Vec2 {
	w := t.GetWorld()
	return Vec2{w.Data[12], w.Data[13]}
}
