package constraint

import (
	"math"

	"github.com/akmonengine/xpbd/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultCompliance controls soft constraint stiffness for contact resolution.
	// Lower values = stiffer contacts (less penetration, potential jitter)
	// Higher values = softer contacts (more penetration, smoother)
	DefaultCompliance = 1e-6

	// tangentEpsilon is the tangential speed under which friction is skipped
	tangentEpsilon = 1e-9
)

// ContactPoint is one point pair of a manifold, in world space at detection time.
type ContactPoint struct {
	PointA mgl64.Vec3 // on the surface of A
	PointB mgl64.Vec3 // on the surface of B
	Depth  float64
}

// Contact is the temporary constraint of one colliding pair, vectorized over its
// manifold points. Each point contributes C = (pA - pB)·Normal, which is
// negative while the bodies interpenetrate; only negative values are projected
// and each point's multiplier stays non-negative, so contacts push and never pull.
type Contact struct {
	BodyA  actor.BodyHandle
	BodyB  actor.BodyHandle
	Normal mgl64.Vec3 // from B toward A
	Points []ContactPoint

	Restitution float64
	Friction    float64
	// RestitutionThreshold is the approach speed under which restitution is ignored
	RestitutionThreshold float64

	compliance float64

	localA  []mgl64.Vec3
	localB  []mgl64.Vec3
	lambdas []float64
	// relative normal velocity before the position solve
	presolveNormalVelocity []float64
}

// NewContact anchors the manifold points in each body's frame and records the
// relative normal velocity used later by restitution. Call it while the bodies
// are still at the pose the manifold was computed from.
func NewContact(bodies *actor.Arena, a, b actor.BodyHandle, normal mgl64.Vec3, points []ContactPoint, compliance float64) *Contact {
	c := &Contact{
		BodyA:      a,
		BodyB:      b,
		Normal:     normal,
		Points:     points,
		compliance: compliance,

		localA:                 make([]mgl64.Vec3, len(points)),
		localB:                 make([]mgl64.Vec3, len(points)),
		lambdas:                make([]float64, len(points)),
		presolveNormalVelocity: make([]float64, len(points)),
	}

	bodyA := bodies.Get(a)
	bodyB := bodies.Get(b)
	if bodyA == nil || bodyB == nil {
		c.Points = nil
		return c
	}

	c.Restitution = MixRestitution(bodyA.Material, bodyB.Material)
	c.Friction = MixFriction(bodyA.Material, bodyB.Material)

	for i, point := range points {
		c.localA[i] = bodyA.PointToLocal(point.PointA)
		c.localB[i] = bodyB.PointToLocal(point.PointB)

		rA := point.PointA.Sub(bodyA.Position())
		rB := point.PointB.Sub(bodyB.Position())
		relative := bodyA.VelocityAt(rA).Sub(bodyB.VelocityAt(rB))
		c.presolveNormalVelocity[i] = relative.Dot(normal)
	}

	return c
}

func (c *Contact) Bodies() []actor.BodyHandle {
	return []actor.BodyHandle{c.BodyA, c.BodyB}
}

func (c *Contact) Compliance() float64 {
	return c.compliance
}

// Lambda is the sum of the per-point multipliers.
func (c *Contact) Lambda() float64 {
	var total float64
	for _, lambda := range c.lambdas {
		total += lambda
	}
	return total
}

func (c *Contact) ResetLambda() {
	clear(c.lambdas)
}

// PointLambda is the multiplier accumulated by manifold point i.
func (c *Contact) PointLambda(i int) float64 {
	return c.lambdas[i]
}

// Error is the deepest violation over the manifold, 0 once separated.
func (c *Contact) Error(bodies *actor.Arena) float64 {
	bodyA := bodies.Get(c.BodyA)
	bodyB := bodies.Get(c.BodyB)
	if bodyA == nil || bodyB == nil {
		return 0
	}

	var deepest float64
	for i := range c.Points {
		pA := bodyA.PredictedPointToWorld(c.localA[i])
		pB := bodyB.PredictedPointToWorld(c.localB[i])
		deepest = min(deepest, pA.Sub(pB).Dot(c.Normal))
	}
	return deepest
}

func (c *Contact) Gradient(bodies *actor.Arena) []mgl64.Vec3 {
	return []mgl64.Vec3{c.Normal, c.Normal.Mul(-1)}
}

// SolvePosition projects every penetrating point in turn, Gauss-Seidel style,
// so that each point sees the corrections of the previous ones.
func (c *Contact) SolvePosition(bodies *actor.Arena, dt float64) {
	bodyA := bodies.Get(c.BodyA)
	bodyB := bodies.Get(c.BodyB)
	if bodyA == nil || bodyB == nil || dt <= 0 {
		return
	}

	alphaTilde := c.compliance / (dt * dt)

	for i := range c.Points {
		pA := bodyA.PredictedPointToWorld(c.localA[i])
		pB := bodyB.PredictedPointToWorld(c.localB[i])

		C := pA.Sub(pB).Dot(c.Normal)
		if C >= 0 {
			continue
		}

		rA := pA.Sub(bodyA.PredictedPosition())
		rB := pB.Sub(bodyB.PredictedPosition())

		// ========== Effective weights ==========
		wA := bodyA.GeneralizedInverseMass(rA, c.Normal)
		wB := bodyB.GeneralizedInverseMass(rB, c.Normal)
		denominator := wA + wB + alphaTilde
		if denominator <= denominatorEpsilon {
			continue
		}

		// ========== Multiplier, kept non-negative ==========
		deltaLambda := (-C - alphaTilde*c.lambdas[i]) / denominator
		if c.lambdas[i]+deltaLambda < 0 {
			deltaLambda = -c.lambdas[i]
		}
		c.lambdas[i] += deltaLambda

		// ========== Corrections ==========
		impulse := c.Normal.Mul(deltaLambda)

		bodyA.ApplyCorrection(impulse.Mul(bodyA.InverseMass))
		bodyA.ApplyRotation(bodyA.InverseInertiaWorld().Mul3x1(rA.Cross(impulse)))

		bodyB.ApplyCorrection(impulse.Mul(-bodyB.InverseMass))
		bodyB.ApplyRotation(bodyB.InverseInertiaWorld().Mul3x1(rB.Cross(impulse)).Mul(-1))
	}
}

// SolveVelocity applies restitution and dynamic friction on every point that
// carried a normal force during the position solve.
//
// The normal target is max(-e·ṽn, 0), ṽn being the approach speed before the
// solve. Friction removes at most dt·μ·fn of tangential speed, with the normal
// force fn = λ/dt², and never reverses it.
func (c *Contact) SolveVelocity(bodies *actor.Arena, dt float64) {
	bodyA := bodies.Get(c.BodyA)
	bodyB := bodies.Get(c.BodyB)
	if bodyA == nil || bodyB == nil || dt <= 0 {
		return
	}

	for i := range c.Points {
		if c.lambdas[i] <= 0 {
			continue
		}

		rA := bodyA.PointToWorld(c.localA[i]).Sub(bodyA.Position())
		rB := bodyB.PointToWorld(c.localB[i]).Sub(bodyB.Position())

		relative := bodyA.VelocityAt(rA).Sub(bodyB.VelocityAt(rB))
		normalVel := relative.Dot(c.Normal)
		tangentVel := relative.Sub(c.Normal.Mul(normalVel))

		var deltaV mgl64.Vec3

		// ========== Friction ==========
		if tangentSpeed := tangentVel.Len(); tangentSpeed > tangentEpsilon {
			normalForce := math.Abs(c.lambdas[i]) / (dt * dt)
			reduction := math.Min(dt*c.Friction*normalForce, tangentSpeed)
			deltaV = deltaV.Sub(tangentVel.Mul(reduction / tangentSpeed))
		}

		// ========== Restitution ==========
		restitution := c.Restitution
		if math.Abs(normalVel) <= c.RestitutionThreshold {
			restitution = 0
		}
		target := math.Max(-restitution*c.presolveNormalVelocity[i], 0)
		deltaV = deltaV.Add(c.Normal.Mul(target - normalVel))

		// ========== Impulse ==========
		magnitude := deltaV.Len()
		if magnitude <= tangentEpsilon {
			continue
		}
		direction := deltaV.Mul(1.0 / magnitude)

		w := bodyA.GeneralizedInverseMass(rA, direction) + bodyB.GeneralizedInverseMass(rB, direction)
		if w <= denominatorEpsilon {
			continue
		}

		impulse := deltaV.Mul(1.0 / w)
		bodyA.ApplyImpulse(impulse, rA)
		bodyB.ApplyImpulse(impulse.Mul(-1), rB)
	}
}
