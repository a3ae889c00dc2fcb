package constraint

import (
	"github.com/akmonengine/xpbd/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Fixation pins a body point to a world position: C = |p - Target|.
type Fixation struct {
	base
	Anchor mgl64.Vec3 // body-local
	Target mgl64.Vec3 // world
}

func NewFixation(body actor.BodyHandle, anchor, target mgl64.Vec3, compliance float64) *Fixation {
	return &Fixation{
		base:   base{bodies: []actor.BodyHandle{body}, compliance: compliance},
		Anchor: anchor,
		Target: target,
	}
}

func (f *Fixation) offset(bodies *actor.Arena) (mgl64.Vec3, bool) {
	body := bodies.Get(f.bodies[0])
	if body == nil {
		return mgl64.Vec3{}, false
	}
	return body.PredictedPointToWorld(f.Anchor).Sub(f.Target), true
}

func (f *Fixation) Error(bodies *actor.Arena) float64 {
	offset, _ := f.offset(bodies)
	return offset.Len()
}

func (f *Fixation) Gradient(bodies *actor.Arena) []mgl64.Vec3 {
	offset, ok := f.offset(bodies)
	if !ok || offset.LenSqr() <= denominatorEpsilon {
		return []mgl64.Vec3{{}}
	}
	return []mgl64.Vec3{offset.Normalize()}
}

func (f *Fixation) arms(bodies *actor.Arena) []mgl64.Vec3 {
	body := bodies.Get(f.bodies[0])
	if body == nil {
		return []mgl64.Vec3{{}}
	}
	return []mgl64.Vec3{body.PredictedRotation().Rotate(f.Anchor)}
}

func (f *Fixation) SolvePosition(bodies *actor.Arena, dt float64) {
	solvePositional(bodies, f, dt)
}
