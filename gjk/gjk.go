// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm for collision detection.
//
// GJK detects whether two convex shapes overlap by testing if their Minkowski difference
// contains the origin. The algorithm builds a simplex incrementally, converging toward
// the origin in typically 3-6 iterations.
//
// Two modes are provided. EarlyExit answers the boolean overlap query and stops on the
// first simplex proving it. FullTetrahedron keeps refining until a tetrahedron encloses
// the origin, which is the seed EPA expects.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Supporter is any convex set able to answer world-space support queries.
type Supporter interface {
	Support(direction mgl64.Vec3) mgl64.Vec3
}

type Mode uint8

const (
	// EarlyExit stops as soon as a simplex proves the intersection
	EarlyExit Mode = iota
	// FullTetrahedron drives the simplex to a tetrahedron enclosing the origin
	FullTetrahedron
)

const (
	// MaxIterations bounds the refinement loop. The duplicate-vertex guard normally
	// terminates long before.
	MaxIterations = 64

	// degenerateEpsilon is the squared-distance floor below which the origin is
	// considered to lie on the current feature.
	degenerateEpsilon = 1e-18

	// volumeEpsilon is the floor for the tetrahedron triple product.
	volumeEpsilon = 1e-14
)

// MinkowskiSupport computes a support point in the Minkowski difference (A - B).
//
// Returns:
//
//	Support point: furthestPoint(A, direction) - furthestPoint(B, -direction)
//
// A zero direction is replaced by +X so that shapes never receive it.
func MinkowskiSupport(a, b Supporter, direction mgl64.Vec3) SupportPoint {
	if direction.LenSqr() <= degenerateEpsilon {
		direction = mgl64.Vec3{1, 0, 0}
	}

	supportA := a.Support(direction)
	supportB := b.Support(direction.Mul(-1))
	return SupportPoint{
		Point:     supportA.Sub(supportB),
		A:         supportA,
		B:         supportB,
		Direction: direction,
	}
}

// Intersect reports whether the convex sets a and b overlap.
//
// Algorithm overview:
//  1. Start with a support point along +X
//  2. Compute the direction from the current simplex toward the origin
//  3. Fetch a new support point; if it does not pass the origin, the sets are separated
//  4. Reject the simplex if the new point duplicates an existing one (no progress possible)
//  5. Repeat until the simplex encloses the origin
//
// The returned simplex is meaningful only when the bool is true. In FullTetrahedron mode
// it normally holds 4 points; it holds fewer only when the origin lies exactly on a point
// of the Minkowski difference, and EPA inflates it.
func Intersect(a, b Supporter, mode Mode) (Simplex, bool) {
	var simplex Simplex
	simplex.push(MinkowskiSupport(a, b, mgl64.Vec3{1, 0, 0}))

	for range MaxIterations {
		direction, enclosed := simplex.evolve(mode)
		if enclosed {
			return simplex, true
		}

		support := MinkowskiSupport(a, b, direction)
		if support.Point.Dot(direction) < 0 {
			return simplex, false
		}

		simplex.push(support)
		if simplex.HasDuplicate() {
			return simplex, false
		}
	}

	return simplex, false
}

// evolve reduces the simplex to the feature closest to the origin and returns the
// next search direction, or true when the origin is enclosed.
func (s *Simplex) evolve(mode Mode) (mgl64.Vec3, bool) {
	switch s.Count {
	case 1:
		return s.point()
	case 2:
		return s.line(mode)
	case 3:
		return s.triangle(mode)
	default:
		return s.tetrahedron(mode)
	}
}

func (s *Simplex) point() (mgl64.Vec3, bool) {
	a := s.Points[0].Point
	if a.LenSqr() <= degenerateEpsilon {
		return mgl64.Vec3{}, true
	}
	return a.Mul(-1), false
}

// line handles the segment [B, A], A being the latest point.
func (s *Simplex) line(mode Mode) (mgl64.Vec3, bool) {
	a := s.Points[1]
	b := s.Points[0]

	ab := b.Point.Sub(a.Point)
	ao := a.Point.Mul(-1)

	if ab.Dot(ao) <= 0 {
		s.set(a)
		return s.point()
	}
	if a.Point.Sub(b.Point).Dot(b.Point.Mul(-1)) <= 0 {
		s.set(b)
		return s.point()
	}

	abLenSqr := ab.LenSqr()
	abCrossAO := ab.Cross(ao)
	if abCrossAO.LenSqr() <= degenerateEpsilon*abLenSqr {
		// Origin on the segment
		if mode == EarlyExit {
			return mgl64.Vec3{}, true
		}
		return perpendicular(ab), false
	}

	return abCrossAO.Cross(ab), false
}

// triangle handles [C, B, A], A being the latest point.
func (s *Simplex) triangle(mode Mode) (mgl64.Vec3, bool) {
	a := s.Points[2]
	b := s.Points[1]
	c := s.Points[0]

	ab := b.Point.Sub(a.Point)
	ac := c.Point.Sub(a.Point)
	ao := a.Point.Mul(-1)
	abc := ab.Cross(ac)

	if abc.LenSqr() <= degenerateEpsilon {
		s.set(b, a)
		return s.line(mode)
	}

	// Edge regions, perpendicular to the triangle plane
	if abc.Cross(ac).Dot(ao) > 0 {
		if ac.Dot(ao) > 0 {
			s.set(c, a)
			return s.line(mode)
		}
		s.set(b, a)
		return s.line(mode)
	}
	if ab.Cross(abc).Dot(ao) > 0 {
		s.set(b, a)
		return s.line(mode)
	}

	// Inside the prism: above, below or on the face
	d := abc.Dot(ao)
	if d*d <= degenerateEpsilon*abc.LenSqr() {
		if mode == EarlyExit {
			return mgl64.Vec3{}, true
		}
		return abc, false
	}
	if d > 0 {
		return abc, false
	}

	// Keep the winding so that abc faces the origin
	s.set(b, c, a)
	return abc.Mul(-1), false
}

// tetrahedron handles [D, C, B, A], A being the latest point. The face BCD needs
// no test: A was found beyond it in the direction of the origin.
func (s *Simplex) tetrahedron(mode Mode) (mgl64.Vec3, bool) {
	a := s.Points[3]
	b := s.Points[2]
	c := s.Points[1]
	d := s.Points[0]

	ab := b.Point.Sub(a.Point)
	ac := c.Point.Sub(a.Point)
	ad := d.Point.Sub(a.Point)
	ao := a.Point.Mul(-1)

	if math.Abs(ab.Dot(ac.Cross(ad))) <= volumeEpsilon {
		s.set(c, b, a)
		return s.triangle(mode)
	}

	// Face normals oriented away from the opposite vertex
	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}
	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}
	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	switch {
	case abc.Dot(ao) > 0:
		s.set(c, b, a)
		return s.triangle(mode)
	case acd.Dot(ao) > 0:
		s.set(d, c, a)
		return s.triangle(mode)
	case adb.Dot(ao) > 0:
		s.set(b, d, a)
		return s.triangle(mode)
	}

	return mgl64.Vec3{}, true
}

// perpendicular returns a vector orthogonal to v.
func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	axis := mgl64.Vec3{1, 0, 0}
	if math.Abs(v.X()) > math.Abs(v.Y()) {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return v.Cross(axis)
}
