package epa

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle of the polytope, wound counter-clockwise seen from outside.
type Face struct {
	Indices  [3]int
	Normal   mgl64.Vec3 // unit outward normal, zero when degenerate
	Distance float64    // distance from the origin to the triangle itself
	Closest  mgl64.Vec3 // point of the triangle closest to the origin

	degenerate bool
}

// newFace computes the cached geometry of the triangle (i, j, k).
func newFace(vertices []mgl64.Vec3, i, j, k int) Face {
	face := Face{Indices: [3]int{i, j, k}}
	a, b, c := vertices[i], vertices[j], vertices[k]

	normal := b.Sub(a).Cross(c.Sub(a))
	if normal.Dot(normal) <= degenerateFaceEpsilon {
		face.degenerate = true
		face.Distance = math.Inf(1)
		return face
	}

	face.Normal = normal.Normalize()
	face.Closest = ClosestPointOnTriangle(mgl64.Vec3{}, a, b, c)
	face.Distance = face.Closest.Len()
	return face
}

// sees reports whether point lies strictly in front of the face plane.
func (f Face) sees(vertices []mgl64.Vec3, point mgl64.Vec3) bool {
	if f.degenerate {
		return false
	}
	return f.Normal.Dot(point.Sub(vertices[f.Indices[0]])) > visibilityEpsilon
}

// edge is a directed edge of a face, from A to B.
type edge struct {
	A, B int
}

// toggleEdge adds e to the silhouette, or cancels it when the opposite edge
// of a neighbouring visible face is already there.
func toggleEdge(edges []edge, e edge) []edge {
	for i, other := range edges {
		if other.A == e.B && other.B == e.A {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return append(edges, e)
}
