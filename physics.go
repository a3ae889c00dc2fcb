// Package xpbd is a rigid-body simulation core built on Extended Position Based
// Dynamics. Bodies live in an arena and are addressed by handle; colliders,
// persistent constraints and the contacts generated each substep refer to them
// through those handles.
package xpbd

import (
	"io"
	"log"

	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/constraint"
	"github.com/akmonengine/xpbd/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ColliderHandle addresses a collider registered with AddCollider.
type ColliderHandle int

const InvalidCollider ColliderHandle = -1

// PairFilter tells whether two colliders may collide. Returning false skips
// the pair before the narrow phase.
type PairFilter func(a, b ColliderHandle) bool

type Physics struct {
	bodies    actor.Arena
	colliders []*actor.Collider

	constraints     []constraint.Constraint
	tempConstraints []constraint.Constraint

	config    Config
	gravity   mgl64.Vec3
	scheduler TimestepScheduler

	Events     Events
	PairFilter PairFilter
	// Logger receives the pairs dropped by the narrow phase. Discarded by default.
	Logger *log.Logger
}

// New validates cfg and returns an empty simulation.
func New(cfg Config) (*Physics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid physics config")
	}

	return &Physics{
		config:    cfg,
		gravity:   cfg.GravityVector(),
		scheduler: cfg.Scheduler(),
		Events:    NewEvents(),
		Logger:    log.New(io.Discard, "", 0),
	}, nil
}

func (p *Physics) Config() Config {
	return p.config
}

// SetScheduler replaces the scheduler selected by the config.
func (p *Physics) SetScheduler(scheduler TimestepScheduler) {
	p.scheduler = scheduler
}

func (p *Physics) AddBody(body *actor.Body) actor.BodyHandle {
	return p.bodies.Add(body)
}

// Body returns nil for an unknown handle.
func (p *Physics) Body(handle actor.BodyHandle) *actor.Body {
	return p.bodies.Get(handle)
}

func (p *Physics) Bodies() *actor.Arena {
	return &p.bodies
}

// AddCollider attaches shape to body. The body must already be registered.
func (p *Physics) AddCollider(body actor.BodyHandle, shape actor.Shape) (ColliderHandle, error) {
	if p.bodies.Get(body) == nil {
		return InvalidCollider, errors.Errorf("add collider: unknown body %d", body)
	}
	if shape == nil {
		return InvalidCollider, errors.New("add collider: nil shape")
	}

	p.colliders = append(p.colliders, actor.NewCollider(body, shape))
	return ColliderHandle(len(p.colliders) - 1), nil
}

// AddTrigger attaches a collider that reports overlaps without a contact response.
func (p *Physics) AddTrigger(body actor.BodyHandle, shape actor.Shape) (ColliderHandle, error) {
	handle, err := p.AddCollider(body, shape)
	if err != nil {
		return InvalidCollider, err
	}
	p.colliders[handle].IsTrigger = true
	return handle, nil
}

func (p *Physics) Collider(handle ColliderHandle) *actor.Collider {
	if handle < 0 || int(handle) >= len(p.colliders) {
		return nil
	}
	return p.colliders[handle]
}

// AddConstraint registers a constraint kept across updates.
func (p *Physics) AddConstraint(c constraint.Constraint) error {
	if err := p.checkBodies(c); err != nil {
		return errors.Wrap(err, "add constraint")
	}
	p.constraints = append(p.constraints, c)
	return nil
}

// AddTempConstraint registers a constraint living until the end of the
// current substep.
func (p *Physics) AddTempConstraint(c constraint.Constraint) error {
	if err := p.checkBodies(c); err != nil {
		return errors.Wrap(err, "add temporary constraint")
	}
	p.tempConstraints = append(p.tempConstraints, c)
	return nil
}

func (p *Physics) checkBodies(c constraint.Constraint) error {
	if c == nil {
		return errors.New("nil constraint")
	}
	for _, handle := range c.Bodies() {
		if p.bodies.Get(handle) == nil {
			return errors.Errorf("unknown body %d", handle)
		}
	}
	return nil
}

func (p *Physics) Constraints() []constraint.Constraint {
	return p.constraints
}

// Overlaps runs the early-exit intersection test between two colliders at
// their current poses.
func (p *Physics) Overlaps(a, b ColliderHandle) (bool, error) {
	colliderA := p.Collider(a)
	colliderB := p.Collider(b)
	if colliderA == nil || colliderB == nil {
		return false, errors.Errorf("overlaps: unknown collider pair (%d, %d)", a, b)
	}

	boundA := colliderA.Bind(p.bodies.Get(colliderA.Body))
	boundB := colliderB.Bind(p.bodies.Get(colliderB.Body))
	_, hit := gjk.Intersect(boundA, boundB, gjk.EarlyExit)
	return hit, nil
}

// Update advances the simulation by dt, split into the configured substeps.
func (p *Physics) Update(dt float64) error {
	if dt <= 0 {
		return errors.Errorf("update: time step must be positive, got %g", dt)
	}

	for i := range p.config.Substeps {
		h := p.scheduler.Substep(i, p.config.Substeps, dt)
		p.substep(h)
	}

	p.Events.flush()
	return nil
}

func (p *Physics) substep(h float64) {
	// Phase 1: predict positions and orientations
	p.bodies.Each(func(_ actor.BodyHandle, body *actor.Body) {
		body.Predict(h, p.gravity, p.config.LinearDamping, p.config.AngularDamping)
	})

	// Phase 2: contacts become temporary constraints
	p.detectCollisions(h)

	p.resetLambdas()

	// Phase 3: Gauss-Seidel sweeps, contacts first
	for range p.config.Iterations {
		for _, c := range p.tempConstraints {
			c.SolvePosition(&p.bodies, h)
		}
		for _, c := range p.constraints {
			c.SolvePosition(&p.bodies, h)
		}
		p.bodies.Each(func(_ actor.BodyHandle, body *actor.Body) {
			body.Iterate()
		})
	}

	// Phase 4: velocities from the pose change
	p.bodies.Each(func(_ actor.BodyHandle, body *actor.Body) {
		body.Update(h)
	})

	// Phase 5: restitution and friction
	for _, c := range p.tempConstraints {
		c.SolveVelocity(&p.bodies, h)
	}
	for _, c := range p.constraints {
		c.SolveVelocity(&p.bodies, h)
	}

	clear(p.tempConstraints)
	p.tempConstraints = p.tempConstraints[:0]
}

func (p *Physics) resetLambdas() {
	for _, c := range p.tempConstraints {
		c.ResetLambda()
	}
	for _, c := range p.constraints {
		c.ResetLambda()
	}
}
