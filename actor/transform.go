package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid pose: a rotation about the origin followed by a translation.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// PointToWorld maps a point expressed in the local frame into world space.
func (t Transform) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local).Add(t.Position)
}

// PointToLocal maps a world-space point into the local frame.
func (t Transform) PointToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(world.Sub(t.Position))
}

// DirectionToWorld rotates a local direction, ignoring the translation.
func (t Transform) DirectionToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local)
}

// DirectionToLocal rotates a world direction into the local frame.
func (t Transform) DirectionToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(world)
}

// Matrix composes translation ∘ rotation into a homogeneous matrix.
func (t Transform) Matrix() mgl64.Mat4 {
	translation := mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	return translation.Mul4(t.Rotation.Mat4())
}
