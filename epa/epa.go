// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA is run after GJK detects a collision to determine:
//   - Penetration depth (how far shapes overlap)
//   - Contact normal (direction to separate shapes)
//   - Witness points (the deepest point of each shape inside the other)
//
// The algorithm expands a polytope (starting from GJK's final simplex) toward the
// boundary of the Minkowski difference, finding the face closest to the origin, which
// gives the Minimum Translation Vector (MTV) separating the shapes.
//
// The package also builds the contact manifold of two polyhedra by clipping the
// incident face against the reference face (see GenerateManifold and Clip).
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"math"

	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const (
	// EPAMaxIterations limits polytope expansion. The loop stops earlier as soon as
	// the closest distance no longer grows.
	EPAMaxIterations = 64

	// EPAConvergenceTolerance defines when EPA has converged: the new support point
	// extends the closest face by less than this distance.
	EPAConvergenceTolerance = 1e-6

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	// This helps with numerical stability for axis-aligned contacts.
	NormalSnapThreshold = 1e-8

	// degenerateFaceEpsilon is the floor on the squared cross product of a face.
	degenerateFaceEpsilon = 2.220446049250313e-16

	// visibilityEpsilon keeps points lying on a face plane from seeing it.
	visibilityEpsilon = 1e-10

	// regressionEpsilon is the drop in closest distance treated as a failed expansion.
	// Equal distances are allowed: a simplex inflated around an origin lying on its
	// boundary starts with several faces at distance zero.
	regressionEpsilon = 1e-12

	duplicateEpsilon = 1e-20
	volumeEpsilon    = 1e-14
	inflateEpsilon   = 1e-10
)

var (
	// ErrDegenerateSimplex is returned when the simplex cannot be inflated to a tetrahedron.
	ErrDegenerateSimplex = errors.New("epa: degenerate simplex")

	// ErrNoClosestFace is returned when every polytope face is degenerate.
	ErrNoClosestFace = errors.New("epa: no valid face")
)

// Shape is a convex set as seen by EPA: support queries, plus the mapping of
// witness points back into the shape's local frame.
type Shape interface {
	gjk.Supporter
	PointToLocal(world mgl64.Vec3) mgl64.Vec3
}

// Result describes the penetration of A into B.
type Result struct {
	// Normal points from B toward A: translating A by Normal*Depth separates the shapes.
	Normal mgl64.Vec3
	Depth  float64

	// World-space witness points: the deepest point of A inside B and vice versa.
	// PointB - PointA == Normal*Depth.
	PointA mgl64.Vec3
	PointB mgl64.Vec3

	// The same witness points in the local frame of their shape.
	LocalA mgl64.Vec3
	LocalB mgl64.Vec3
}

// Valid reports whether the result can produce a contact: a finite normal and a
// strictly positive depth.
func (r Result) Valid() bool {
	for _, c := range r.Normal {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return r.Depth > 0 && !math.IsNaN(r.Depth)
}

// EPA computes penetration depth and witness points for overlapping convex shapes.
//
// Algorithm overview:
//  1. Inflate the GJK simplex to a tetrahedron when it has fewer than 4 points
//  2. Build the initial polytope with outward faces
//  3. Find the face closest to the origin
//  4. Stop when the distance shrinks, or the support point along the face normal
//     does not extend the polytope
//  5. Otherwise, expand the polytope with the support point and repeat from step 3
//  6. Rebuild the witness points from the barycentric coordinates of the origin's
//     projection on the closest face
//
// Parameters:
//   - a, b: The two colliding shapes
//   - simplex: Final simplex from GJK
//
// Returns:
//   - Result: contact normal (from B toward A), depth and witness points
//   - error: ErrDegenerateSimplex or ErrNoClosestFace on degenerate geometry
func EPA(a, b Shape, simplex gjk.Simplex) (Result, error) {
	tetrahedron, err := inflate(a, b, simplex)
	if err != nil {
		return Result{}, err
	}

	polytope, err := NewPolytope(tetrahedron)
	if err != nil {
		return Result{}, err
	}

	closest := -1
	best := math.Inf(-1)
	for range EPAMaxIterations {
		next := polytope.ClosestFace()
		if next < 0 {
			return Result{}, ErrNoClosestFace
		}

		face := polytope.Faces[next]
		if closest >= 0 && face.Distance < best-regressionEpsilon {
			// The closest distance went backwards, only numerical noise can do that
			break
		}
		closest = next
		best = face.Distance

		support := gjk.MinkowskiSupport(a, b, face.Normal)
		if support.Point.Dot(face.Normal)-face.Distance < EPAConvergenceTolerance {
			break
		}

		if !polytope.Expand(support) {
			break
		}
		closest = polytope.ClosestFace()
		if closest < 0 {
			return Result{}, ErrNoClosestFace
		}
	}

	return polytope.result(closest, a, b)
}

// result turns the closest face into witness points. The projection of the
// origin on the face is expressed in barycentric coordinates, which are then
// applied to the support points each vertex was built from.
func (p *Polytope) result(f int, a, b Shape) (Result, error) {
	face := p.Faces[f]
	i, j, k := face.Indices[0], face.Indices[1], face.Indices[2]

	weights, ok := Barycentric(face.Closest, p.points[i], p.points[j], p.points[k])
	if !ok {
		return Result{}, errors.Wrap(ErrNoClosestFace, "closest face is degenerate")
	}

	va, vb, vc := p.Vertices[i], p.Vertices[j], p.Vertices[k]
	pointA := va.A.Mul(weights[0]).Add(vb.A.Mul(weights[1])).Add(vc.A.Mul(weights[2]))
	pointB := va.B.Mul(weights[0]).Add(vb.B.Mul(weights[1])).Add(vc.B.Mul(weights[2]))

	return Result{
		Normal: snapNormalToAxis(face.Normal.Mul(-1)),
		Depth:  face.Distance,
		PointA: pointA,
		PointB: pointB,
		LocalA: a.PointToLocal(pointA),
		LocalB: b.PointToLocal(pointB),
	}, nil
}

// inflate grows a GJK simplex that stopped on a point, segment or triangle into a
// non-degenerate tetrahedron, probing axis directions for a point and directions
// derived from the simplex for a segment or triangle.
func inflate(a, b Shape, simplex gjk.Simplex) ([4]gjk.SupportPoint, error) {
	var tetrahedron [4]gjk.SupportPoint
	points := append([]gjk.SupportPoint(nil), simplex.Slice()...)
	if len(points) == 0 {
		return tetrahedron, errors.Wrap(ErrDegenerateSimplex, "empty simplex")
	}

	if len(points) == 1 {
		for _, direction := range searchAxes {
			support := gjk.MinkowskiSupport(a, b, direction)
			if support.Point.Sub(points[0].Point).LenSqr() > inflateEpsilon {
				points = append(points, support)
				break
			}
		}
	}

	if len(points) == 2 {
		axis := points[1].Point.Sub(points[0].Point)
		if axis.LenSqr() <= inflateEpsilon {
			return tetrahedron, errors.Wrap(ErrDegenerateSimplex, "zero-length segment")
		}
		u, v := actor.TangentBasis(axis.Normalize())
		for step := range 6 {
			angle := float64(step) * math.Pi / 3
			direction := u.Mul(math.Cos(angle)).Add(v.Mul(math.Sin(angle)))
			support := gjk.MinkowskiSupport(a, b, direction)
			if distanceToLineSqr(support.Point, points[0].Point, points[1].Point) > inflateEpsilon {
				points = append(points, support)
				break
			}
		}
	}

	if len(points) == 3 {
		normal := points[1].Point.Sub(points[0].Point).Cross(points[2].Point.Sub(points[0].Point))
		if normal.LenSqr() <= degenerateFaceEpsilon {
			return tetrahedron, errors.Wrap(ErrDegenerateSimplex, "colinear triangle")
		}
		normal = normal.Normalize()
		for _, direction := range []mgl64.Vec3{normal, normal.Mul(-1)} {
			support := gjk.MinkowskiSupport(a, b, direction)
			if offset := support.Point.Sub(points[0].Point).Dot(normal); offset*offset > inflateEpsilon {
				points = append(points, support)
				break
			}
		}
	}

	if len(points) < 4 {
		return tetrahedron, errors.Wrapf(ErrDegenerateSimplex, "stuck at %d points", len(points))
	}

	copy(tetrahedron[:], points)
	return tetrahedron, nil
}

var searchAxes = []mgl64.Vec3{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

func distanceToLineSqr(p, a, b mgl64.Vec3) float64 {
	ab := b.Sub(a)
	cross := ab.Cross(p.Sub(a))
	return cross.LenSqr() / ab.LenSqr()
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly zero.
//
// This improves numerical stability for axis-aligned collisions (box on ground)
// by preventing tiny floating-point errors from causing jitter in tangent directions.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	snapped := normal
	for i := range snapped {
		if math.Abs(snapped[i]) < NormalSnapThreshold {
			snapped[i] = 0
		}
	}

	length := snapped.Len()
	if length < NormalSnapThreshold {
		return normal
	}
	return snapped.Mul(1.0 / length)
}
