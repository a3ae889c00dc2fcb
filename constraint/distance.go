package constraint

import (
	"github.com/akmonengine/xpbd/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Distance keeps two body points at RestLength from each other:
// C = |pA - pB| - RestLength. Anchors are body-local; zero anchors bind the
// centers, which is all a particle has.
type Distance struct {
	base
	AnchorA    mgl64.Vec3
	AnchorB    mgl64.Vec3
	RestLength float64
}

// NewDistance links the centers of two bodies.
func NewDistance(a, b actor.BodyHandle, restLength, compliance float64) *Distance {
	return NewAnchoredDistance(a, b, mgl64.Vec3{}, mgl64.Vec3{}, restLength, compliance)
}

// NewAnchoredDistance links two body-local points; the lever arms make rigid
// bodies rotate under the correction.
func NewAnchoredDistance(a, b actor.BodyHandle, anchorA, anchorB mgl64.Vec3, restLength, compliance float64) *Distance {
	return &Distance{
		base:       base{bodies: []actor.BodyHandle{a, b}, compliance: compliance},
		AnchorA:    anchorA,
		AnchorB:    anchorB,
		RestLength: restLength,
	}
}

func (d *Distance) points(bodies *actor.Arena) (mgl64.Vec3, mgl64.Vec3, bool) {
	bodyA := bodies.Get(d.bodies[0])
	bodyB := bodies.Get(d.bodies[1])
	if bodyA == nil || bodyB == nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return bodyA.PredictedPointToWorld(d.AnchorA), bodyB.PredictedPointToWorld(d.AnchorB), true
}

func (d *Distance) Error(bodies *actor.Arena) float64 {
	pA, pB, ok := d.points(bodies)
	if !ok {
		return 0
	}
	return pA.Sub(pB).Len() - d.RestLength
}

func (d *Distance) Gradient(bodies *actor.Arena) []mgl64.Vec3 {
	pA, pB, ok := d.points(bodies)
	delta := pA.Sub(pB)
	if !ok || delta.LenSqr() <= denominatorEpsilon {
		// Coincident points: no defined direction
		return []mgl64.Vec3{{}, {}}
	}
	n := delta.Normalize()
	return []mgl64.Vec3{n, n.Mul(-1)}
}

func (d *Distance) arms(bodies *actor.Arena) []mgl64.Vec3 {
	anchors := [2]mgl64.Vec3{d.AnchorA, d.AnchorB}
	arms := make([]mgl64.Vec3, 2)
	for i, handle := range d.bodies {
		if body := bodies.Get(handle); body != nil {
			arms[i] = body.PredictedRotation().Rotate(anchors[i])
		}
	}
	return arms
}

func (d *Distance) SolvePosition(bodies *actor.Arena, dt float64) {
	solvePositional(bodies, d, dt)
}
