package epa

import (
	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// GenerateManifold creates contact points for a collision using Sutherland-Hodgman clipping.
//
// A contact manifold is a set of contact points sharing the EPA normal. Several points
// keep a resting polyhedron from rocking around a single contact.
//
// Algorithm:
//  1. For each shape, take the face around its support vertex that best faces the
//     other shape (A along -normal, B along +normal)
//  2. The face most aligned with the contact normal becomes the reference, the other
//     one the incident polygon
//  3. Clip the incident polygon against the side planes raised on each reference edge
//  4. Keep the clipped points lying below the reference face plane
//  5. Project each of them onto the reference face: one contact pair per point
//
// Shapes without topology (spheres) fall back to the single EPA witness pair, as does a
// clip that leaves nothing.
//
// Parameters:
//   - a, b: The two colliders bound to their bodies' poses
//   - result: The EPA result for the pair, normal pointing from B toward A
//
// Returns:
//
//	Contact points with world positions on each body and their penetration depth
func GenerateManifold(a, b actor.BoundCollider, result Result) []constraint.ContactPoint {
	fallback := []constraint.ContactPoint{{
		PointA: result.PointA,
		PointB: result.PointB,
		Depth:  result.Depth,
	}}

	normal := result.Normal
	faceA := a.ContactFace(normal.Mul(-1))
	faceB := b.ContactFace(normal)
	if faceA < 0 || faceB < 0 {
		return fallback
	}

	normalA := a.FaceNormal(faceA)
	normalB := b.FaceNormal(faceB)

	// ========== REFERENCE / INCIDENT ==========
	referenceIsA := normalA.Dot(normal.Mul(-1)) >= normalB.Dot(normal)

	var reference, incident []mgl64.Vec3
	var referenceNormal mgl64.Vec3
	if referenceIsA {
		reference, referenceNormal = a.FacePolygon(faceA), normalA
		incident = b.FacePolygon(faceB)
	} else {
		reference, referenceNormal = b.FacePolygon(faceB), normalB
		incident = a.FacePolygon(faceA)
	}

	// ========== SIDE PLANES ==========
	// For a counter-clockwise face, n × edge points toward the face interior
	clipped := incident
	for i := range reference {
		start := reference[i]
		end := reference[(i+1)%len(reference)]
		inward := referenceNormal.Cross(end.Sub(start))
		if inward.LenSqr() < 1e-20 {
			continue
		}

		clipped = Clip(clipped, start, inward.Normalize(), true)
		if len(clipped) == 0 {
			return fallback
		}
	}

	// ========== REFERENCE PLANE ==========
	clipped = Clip(clipped, reference[0], referenceNormal.Mul(-1), false)

	points := make([]constraint.ContactPoint, 0, len(clipped))
	for _, p := range clipped {
		depth := reference[0].Sub(p).Dot(referenceNormal)
		if depth <= 0 {
			continue
		}
		projected := p.Add(referenceNormal.Mul(depth))

		if referenceIsA {
			points = append(points, constraint.ContactPoint{PointA: projected, PointB: p, Depth: depth})
		} else {
			points = append(points, constraint.ContactPoint{PointA: p, PointB: projected, Depth: depth})
		}
	}

	if len(points) == 0 {
		return fallback
	}
	return points
}
