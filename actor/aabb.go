package actor

import "github.com/go-gl/mathgl/mgl64"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

var worldAxes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Bounds encloses the collider at its bound pose, from six support queries.
// The box is tight for any convex shape.
func (b BoundCollider) Bounds() AABB {
	var aabb AABB
	for i, axis := range worldAxes {
		aabb.Max[i] = b.Support(axis)[i]
		aabb.Min[i] = b.Support(axis.Mul(-1))[i]
	}
	return aabb
}

// Expand grows the box by margin on every side.
func (a AABB) Expand(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// ContainsPoint reports whether point lies in the box, boundary included.
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	for i := range 3 {
		if point[i] < a.Min[i] || point[i] > a.Max[i] {
			return false
		}
	}
	return true
}

// Overlaps reports whether the boxes share at least one point. Touching counts.
func (a AABB) Overlaps(other AABB) bool {
	for i := range 3 {
		if a.Max[i] < other.Min[i] || other.Max[i] < a.Min[i] {
			return false
		}
	}
	return true
}
