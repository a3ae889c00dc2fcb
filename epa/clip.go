package epa

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// clipTolerance widens the kept half-space so that points lying on the plane survive.
const clipTolerance = 1e-6

// Clip clips a convex polygon against the half-space of points p with
// (p - origin)·normal >= 0 (Sutherland-Hodgman).
//
// With keepClipped, the points where edges cross the plane are inserted, so the
// result is the clipped polygon. Without it only the original vertices lying in the
// half-space are returned, which is what a depth filter against a face plane needs.
//
// An empty polygon, or one entirely outside the half-space, yields an empty result.
func Clip(polygon []mgl64.Vec3, origin, normal mgl64.Vec3, keepClipped bool) []mgl64.Vec3 {
	if len(polygon) == 0 {
		return nil
	}

	side := func(p mgl64.Vec3) float64 { return p.Sub(origin).Dot(normal) }

	output := make([]mgl64.Vec3, 0, len(polygon)+1)
	prev := polygon[len(polygon)-1]
	prevIn := side(prev) >= -clipTolerance
	for _, vertex := range polygon {
		in := side(vertex) >= -clipTolerance
		if keepClipped && in != prevIn {
			output = append(output, lineIntersectPlane(prev, vertex, origin, normal))
		}
		if in {
			output = append(output, vertex)
		}
		prev, prevIn = vertex, in
	}

	return dedupe(output)
}

// lineIntersectPlane returns where segment p1p2 crosses the plane, clamped to the segment.
// A segment parallel to the plane yields p1.
func lineIntersectPlane(p1, p2, planePoint, planeNormal mgl64.Vec3) mgl64.Vec3 {
	segment := p2.Sub(p1)
	along := segment.Dot(planeNormal)
	if math.Abs(along) < 1e-10 {
		return p1
	}

	t := planePoint.Sub(p1).Dot(planeNormal) / along
	return p1.Add(segment.Mul(min(max(t, 0), 1)))
}

// dedupe drops consecutive points closer than clipTolerance, wrapping around.
func dedupe(polygon []mgl64.Vec3) []mgl64.Vec3 {
	if len(polygon) < 2 {
		return polygon
	}

	const toleranceSqr = clipTolerance * clipTolerance
	output := polygon[:1]
	for _, p := range polygon[1:] {
		if p.Sub(output[len(output)-1]).LenSqr() > toleranceSqr {
			output = append(output, p)
		}
	}
	for len(output) > 1 && output[len(output)-1].Sub(output[0]).LenSqr() <= toleranceSqr {
		output = output[:len(output)-1]
	}
	return output
}
