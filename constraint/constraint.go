// Package constraint holds the XPBD constraints: user-authored distance, fixation and
// half-space constraints, and the contact constraint generated by collision detection.
//
// Every constraint is a scalar function C of the body poses, satisfied at C == 0,
// projected with the compliant update
//
//	α  = compliance / dt²
//	Δλ = (−C − α·λ) / (Σ wᵢ|∇Cᵢ|² + α)
//
// where wᵢ is the generalized inverse mass of body i (translation plus rotation about
// the lever arm of the constraint point).
package constraint

import (
	"math"

	"github.com/akmonengine/xpbd/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// denominatorEpsilon is the floor under which a constraint is treated as
// acting only on immovable bodies.
const denominatorEpsilon = 1e-12

type Constraint interface {
	Bodies() []actor.BodyHandle
	// Compliance is the inverse stiffness, 0 for a rigid constraint
	Compliance() float64
	// Lambda is the multiplier accumulated since the last ResetLambda
	Lambda() float64
	ResetLambda()

	// Error evaluates C at the bodies' working poses
	Error(bodies *actor.Arena) float64
	// Gradient returns ∂C/∂xᵢ for each body, in Bodies order
	Gradient(bodies *actor.Arena) []mgl64.Vec3

	SolvePosition(bodies *actor.Arena, dt float64)
	SolveVelocity(bodies *actor.Arena, dt float64)
}

// base carries the state shared by scalar constraints.
type base struct {
	bodies     []actor.BodyHandle
	compliance float64
	lambda     float64
}

func (b *base) Bodies() []actor.BodyHandle {
	return b.bodies
}

func (b *base) Compliance() float64 {
	return b.compliance
}

func (b *base) Lambda() float64 {
	return b.lambda
}

func (b *base) ResetLambda() {
	b.lambda = 0
}

// SolveVelocity is a no-op: user constraints act on positions only.
func (b *base) SolveVelocity(bodies *actor.Arena, dt float64) {}

// positional is a scalar constraint solved by the generic update.
type positional interface {
	Constraint
	// arms returns the world lever arm of the constraint point on each body,
	// relative to its center of mass
	arms(bodies *actor.Arena) []mgl64.Vec3
	addLambda(deltaLambda float64)
}

func (b *base) addLambda(deltaLambda float64) {
	b.lambda += deltaLambda
}

// solvePositional runs one XPBD projection of c and returns Δλ.
func solvePositional(bodies *actor.Arena, c positional, dt float64) float64 {
	if dt <= 0 {
		return 0
	}

	C := c.Error(bodies)
	gradients := c.Gradient(bodies)
	arms := c.arms(bodies)
	handles := c.Bodies()

	alphaTilde := c.Compliance() / (dt * dt)
	denominator := alphaTilde
	for i, handle := range handles {
		body := bodies.Get(handle)
		if body == nil {
			continue
		}
		denominator += body.GeneralizedInverseMass(arms[i], gradients[i])
	}

	if math.Abs(denominator) <= denominatorEpsilon {
		return 0
	}

	deltaLambda := (-C - alphaTilde*c.Lambda()) / denominator
	c.addLambda(deltaLambda)

	for i, handle := range handles {
		body := bodies.Get(handle)
		if body == nil {
			continue
		}
		body.ApplyCorrection(gradients[i].Mul(body.InverseMass * deltaLambda))
		body.ApplyRotation(body.InverseInertiaWorld().Mul3x1(arms[i].Cross(gradients[i])).Mul(deltaLambda))
	}

	return deltaLambda
}

func MixRestitution(matA, matB actor.Material) float64 {
	// Average rather than maximum or geometric mean
	return (matA.Restitution + matB.Restitution) / 2.0
}

func MixFriction(matA, matB actor.Material) float64 {
	// Geometric mean
	return math.Sqrt(matA.Friction * matB.Friction)
}
