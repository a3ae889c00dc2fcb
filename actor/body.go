package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind distinguishes the two body variants sharing the same integration state
type Kind uint8

const (
	// KindParticle bodies translate only: zero inertia, orientation never changes
	KindParticle Kind = iota

	// KindRigid bodies also rotate, driven by their inertia tensor
	KindRigid
)

type Material struct {
	Restitution float64 // 0= no rebound, 1= perfect restitution
	Friction    float64
}

// Body is a simulated object. It keeps two poses: Transform is the
// authoritative one read by collision detection and by callers, while the
// predicted pose is the working copy mutated by constraint projection and
// committed by Iterate.
type Body struct {
	Kind Kind

	// Spatial properties
	PreviousTransform Transform
	Transform         Transform
	predicted         Transform

	linearVelocity  mgl64.Vec3
	angularVelocity mgl64.Vec3

	// InverseMass == 0 marks an immovable body
	InverseMass         float64
	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	Material Material
}

func newBody(kind Kind, position mgl64.Vec3, orientation mgl64.Quat, inverseMass float64, inertia Inertia) *Body {
	if inverseMass < 0 {
		inverseMass = 0
	}
	transform := Transform{Position: position, Rotation: orientation.Normalize()}
	scaled := inertia.Scale(inverseMass)

	return &Body{
		Kind:                kind,
		PreviousTransform:   transform,
		Transform:           transform,
		predicted:           transform,
		InverseMass:         inverseMass,
		InertiaLocal:        scaled.Tensor,
		InverseInertiaLocal: scaled.Inverse,
	}
}

// NewParticle creates a point mass. Its orientation is fixed to identity.
func NewParticle(position mgl64.Vec3, inverseMass float64) *Body {
	return newBody(KindParticle, position, mgl64.QuatIdent(), inverseMass, ZeroInertia())
}

// NewRigidBody creates a rotating body. inertia is expressed for a unit mass
// (see CubeInertia, SphereInertia) and is scaled by inverseMass here.
func NewRigidBody(position mgl64.Vec3, orientation mgl64.Quat, inverseMass float64, inertia Inertia) *Body {
	return newBody(KindRigid, position, orientation, inverseMass, inertia)
}

func (b *Body) IsStatic() bool {
	return b.InverseMass == 0
}

func (b *Body) rotates() bool {
	return b.Kind == KindRigid && !b.IsStatic()
}

// Predict stores the current pose and advances the body by dt with
// semi-implicit Euler, including the gyroscopic term for rigid bodies.
func (b *Body) Predict(dt float64, gravity mgl64.Vec3, linearDamping, angularDamping float64) {
	b.PreviousTransform = b.Transform

	if b.IsStatic() {
		b.predicted = b.Transform
		b.ClearForces()
		return
	}

	// ========== LINEAR ==========
	acceleration := gravity.Add(b.accumulatedForce.Mul(b.InverseMass))
	b.linearVelocity = b.linearVelocity.Add(acceleration.Mul(dt))
	b.linearVelocity = b.linearVelocity.Mul(math.Exp(-linearDamping * dt))
	b.Transform.Position = b.Transform.Position.Add(b.linearVelocity.Mul(dt))

	// ========== ANGULAR ==========
	if b.rotates() {
		inertia := b.InertiaWorld()
		inverseInertia := b.InverseInertiaWorld()

		gyroscopic := b.angularVelocity.Cross(inertia.Mul3x1(b.angularVelocity))
		angularAccel := inverseInertia.Mul3x1(b.accumulatedTorque.Sub(gyroscopic))
		b.angularVelocity = b.angularVelocity.Add(angularAccel.Mul(dt))
		b.angularVelocity = b.angularVelocity.Mul(math.Exp(-angularDamping * dt))

		b.Transform.Rotation = integrateRotation(b.Transform.Rotation, b.angularVelocity.Mul(dt))
	}

	b.predicted = b.Transform
	b.ClearForces()
}

// integrateRotation applies q += 0.5 * [dtheta, 0] * q and renormalizes.
func integrateRotation(q mgl64.Quat, dtheta mgl64.Vec3) mgl64.Quat {
	omegaQuat := mgl64.Quat{V: dtheta, W: 0}
	qDot := omegaQuat.Mul(q).Scale(0.5)
	return q.Add(qDot).Normalize()
}

// Iterate commits the predicted pose into the authoritative transform.
func (b *Body) Iterate() {
	b.Transform = b.predicted
}

// Update recovers velocities from the pose change over the substep.
func (b *Body) Update(dt float64) {
	if b.IsStatic() || dt <= 0 {
		return
	}

	b.linearVelocity = b.Transform.Position.Sub(b.PreviousTransform.Position).Mul(1.0 / dt)

	if b.Kind != KindRigid {
		return
	}
	qDelta := b.Transform.Rotation.Mul(b.PreviousTransform.Rotation.Conjugate())
	if qDelta.W >= 0.0 {
		b.angularVelocity = qDelta.V.Mul(2.0 / dt)
	} else {
		b.angularVelocity = qDelta.V.Mul(-2.0 / dt)
	}
}

// PredictedPosition is the working position used by constraint projection.
func (b *Body) PredictedPosition() mgl64.Vec3 {
	return b.predicted.Position
}

func (b *Body) PredictedRotation() mgl64.Quat {
	return b.predicted.Rotation
}

// PredictedPointToWorld maps a local point through the working pose.
func (b *Body) PredictedPointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.predicted.PointToWorld(local)
}

// ApplyCorrection translates the working pose.
func (b *Body) ApplyCorrection(delta mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.predicted.Position = b.predicted.Position.Add(delta)
}

// ApplyRotation rotates the working pose by the small rotation vector dtheta.
func (b *Body) ApplyRotation(dtheta mgl64.Vec3) {
	if !b.rotates() {
		return
	}
	b.predicted.Rotation = integrateRotation(b.predicted.Rotation, dtheta)
}

// InertiaWorld is R * I * R^T at the working orientation.
func (b *Body) InertiaWorld() mgl64.Mat3 {
	R := b.predicted.Rotation.Mat4().Mat3()
	return R.Mul3(b.InertiaLocal).Mul3(R.Transpose())
}

// InverseInertiaWorld is R * I^-1 * R^T at the working orientation.
func (b *Body) InverseInertiaWorld() mgl64.Mat3 {
	if !b.rotates() {
		return mgl64.Mat3{}
	}
	R := b.predicted.Rotation.Mat4().Mat3()
	return R.Mul3(b.InverseInertiaLocal).Mul3(R.Transpose())
}

// GeneralizedInverseMass is the resistance of the body to a unit correction
// along direction applied at lever arm r: w = 1/m + (r × n)ᵀ I⁻¹ (r × n).
func (b *Body) GeneralizedInverseMass(r, direction mgl64.Vec3) float64 {
	rn := r.Cross(direction)
	return b.InverseMass*direction.Dot(direction) + b.InverseInertiaWorld().Mul3x1(rn).Dot(rn)
}

// VelocityAt is the velocity of the material point at lever arm r.
func (b *Body) VelocityAt(r mgl64.Vec3) mgl64.Vec3 {
	return b.linearVelocity.Add(b.angularVelocity.Cross(r))
}

// ApplyImpulse changes the velocities as if impulse acted at lever arm r.
func (b *Body) ApplyImpulse(impulse, r mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(impulse.Mul(b.InverseMass))
	if b.rotates() {
		b.angularVelocity = b.angularVelocity.Add(b.InverseInertiaWorld().Mul3x1(r.Cross(impulse)))
	}
}

func (b *Body) AddForce(force mgl64.Vec3) {
	if !b.IsStatic() {
		b.accumulatedForce = b.accumulatedForce.Add(force)
	}
}

func (b *Body) AddTorque(torque mgl64.Vec3) {
	if b.rotates() {
		b.accumulatedTorque = b.accumulatedTorque.Add(torque)
	}
}

// AddForceAtPoint applies a force at a world-space point, producing a torque
// about the center of mass for rigid bodies.
func (b *Body) AddForceAtPoint(force, point mgl64.Vec3) {
	b.AddForce(force)
	b.AddTorque(point.Sub(b.Transform.Position).Cross(force))
}

func (b *Body) ClearForces() {
	b.accumulatedForce = mgl64.Vec3{0, 0, 0}
	b.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

func (b *Body) Position() mgl64.Vec3 {
	return b.Transform.Position
}

func (b *Body) Orientation() mgl64.Quat {
	return b.Transform.Rotation
}

func (b *Body) LinearVelocity() mgl64.Vec3 {
	return b.linearVelocity
}

func (b *Body) AngularVelocity() mgl64.Vec3 {
	return b.angularVelocity
}

func (b *Body) SetLinearVelocity(v mgl64.Vec3) {
	if !b.IsStatic() {
		b.linearVelocity = v
	}
}

func (b *Body) SetAngularVelocity(w mgl64.Vec3) {
	if b.rotates() {
		b.angularVelocity = w
	}
}

func (b *Body) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.Transform.PointToWorld(local)
}

func (b *Body) PointToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return b.Transform.PointToLocal(world)
}

// WorldTransform is the model matrix (translation ∘ rotation) for rendering.
func (b *Body) WorldTransform() mgl64.Mat4 {
	return b.Transform.Matrix()
}
