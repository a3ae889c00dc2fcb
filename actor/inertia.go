package actor

import "github.com/go-gl/mathgl/mgl64"

// Inertia pairs a local-space inertia tensor with its inverse.
// The helpers below return tensors for a unit mass; Scale converts them
// to a concrete body given its inverse mass.
type Inertia struct {
	Tensor  mgl64.Mat3
	Inverse mgl64.Mat3
}

// ZeroInertia is used by particles and static bodies: no rotational response.
func ZeroInertia() Inertia {
	return Inertia{}
}

// diagonalInertia builds the pair from principal moments, all strictly positive.
func diagonalInertia(moments mgl64.Vec3) Inertia {
	return Inertia{
		Tensor:  mgl64.Diag3(moments),
		Inverse: mgl64.Diag3(mgl64.Vec3{1 / moments.X(), 1 / moments.Y(), 1 / moments.Z()}),
	}
}

// CubeInertia is the unit-mass inertia of a solid cube about its center.
func CubeInertia(side float64) Inertia {
	moment := side * side / 6.0
	return diagonalInertia(mgl64.Vec3{moment, moment, moment})
}

// BoxInertia is the unit-mass inertia of a solid box given its half extents.
func BoxInertia(halfExtents mgl64.Vec3) Inertia {
	x2 := halfExtents.X() * halfExtents.X()
	y2 := halfExtents.Y() * halfExtents.Y()
	z2 := halfExtents.Z() * halfExtents.Z()

	return diagonalInertia(mgl64.Vec3{
		(y2 + z2) / 3.0,
		(x2 + z2) / 3.0,
		(x2 + y2) / 3.0,
	})
}

// SphereInertia is the unit-mass inertia of a solid sphere.
func SphereInertia(radius float64) Inertia {
	moment := 2.0 / 5.0 * radius * radius
	return diagonalInertia(mgl64.Vec3{moment, moment, moment})
}

// Scale turns a unit-mass inertia into the inertia of a body with the given
// inverse mass. An immovable body (inverseMass == 0) gets zero inertia.
func (i Inertia) Scale(inverseMass float64) Inertia {
	if inverseMass <= 0 {
		return ZeroInertia()
	}

	return Inertia{
		Tensor:  i.Tensor.Mul(1.0 / inverseMass),
		Inverse: i.Inverse.Mul(inverseMass),
	}
}
