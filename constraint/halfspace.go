package constraint

import (
	"github.com/akmonengine/xpbd/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// HalfSpace keeps a body point on the positive side of the plane
// Normal·p = Offset. It only pushes: C = min(Normal·p - Offset, 0).
type HalfSpace struct {
	base
	Anchor mgl64.Vec3 // body-local
	Normal mgl64.Vec3 // unit, world
	Offset float64
}

func NewHalfSpace(body actor.BodyHandle, anchor, normal mgl64.Vec3, offset, compliance float64) *HalfSpace {
	return &HalfSpace{
		base:   base{bodies: []actor.BodyHandle{body}, compliance: compliance},
		Anchor: anchor,
		Normal: normal.Normalize(),
		Offset: offset,
	}
}

func (h *HalfSpace) Error(bodies *actor.Arena) float64 {
	body := bodies.Get(h.bodies[0])
	if body == nil {
		return 0
	}
	return min(h.Normal.Dot(body.PredictedPointToWorld(h.Anchor))-h.Offset, 0)
}

func (h *HalfSpace) Gradient(bodies *actor.Arena) []mgl64.Vec3 {
	if h.Error(bodies) >= 0 {
		return []mgl64.Vec3{{}}
	}
	return []mgl64.Vec3{h.Normal}
}

func (h *HalfSpace) arms(bodies *actor.Arena) []mgl64.Vec3 {
	body := bodies.Get(h.bodies[0])
	if body == nil {
		return []mgl64.Vec3{{}}
	}
	return []mgl64.Vec3{body.PredictedRotation().Rotate(h.Anchor)}
}

func (h *HalfSpace) SolvePosition(bodies *actor.Arena, dt float64) {
	if h.Error(bodies) >= 0 {
		return
	}
	solvePositional(bodies, h, dt)
}
