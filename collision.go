package xpbd

import (
	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/constraint"
	"github.com/akmonengine/xpbd/epa"
	"github.com/akmonengine/xpbd/gjk"
)

// Compliance presets, in m/N, usable for Config.ContactCompliance or user constraints.
const STIFF_COMPLIANCE = CONCRETE_COMPLIANCE

const (
	CONCRETE_COMPLIANCE = 0.04e-9
	WOOD_COMPLIANCE     = 0.16e-9
	LEATHER_COMPLIANCE  = 14e-8
	TENDON_COMPLIANCE   = 0.2e-7
	RUBBER_COMPLIANCE   = 1e-6
	MUSCLE_COMPLIANCE   = 0.2e-3
	FAT_COMPLIANCE      = 1e-3
)

// Pair represents two colliders that potentially collide
type Pair struct {
	ColliderA ColliderHandle
	ColliderB ColliderHandle
}

// BroadPhase returns every collider pair worth a narrow-phase test.
// This is an O(n²) brute-force approach suitable for small numbers of bodies.
// Skipped: pairs sharing a body, pairs of two immovable bodies, pairs rejected
// by the filter and pairs whose bounding boxes are apart.
func (p *Physics) BroadPhase() []Pair {
	pairs := make([]Pair, 0, len(p.colliders))

	bounds := make([]actor.AABB, len(p.colliders))
	for i, collider := range p.colliders {
		if body := p.bodies.Get(collider.Body); body != nil {
			bounds[i] = collider.Bind(body).Bounds()
		}
	}

	for i := 0; i < len(p.colliders); i++ {
		for j := i + 1; j < len(p.colliders); j++ {
			colliderA, colliderB := p.colliders[i], p.colliders[j]
			if colliderA.Body == colliderB.Body {
				continue
			}

			bodyA := p.bodies.Get(colliderA.Body)
			bodyB := p.bodies.Get(colliderB.Body)
			if bodyA == nil || bodyB == nil {
				continue
			}
			if bodyA.IsStatic() && bodyB.IsStatic() {
				continue
			}
			if !bounds[i].Overlaps(bounds[j]) {
				continue
			}

			a, b := ColliderHandle(i), ColliderHandle(j)
			if p.PairFilter != nil && !p.PairFilter(a, b) {
				continue
			}
			pairs = append(pairs, Pair{ColliderA: a, ColliderB: b})
		}
	}

	return pairs
}

// NarrowPhase runs GJK then EPA on each pair and builds one contact constraint
// per penetrating pair. Trigger pairs only produce events.
func (p *Physics) NarrowPhase(pairs []Pair, h float64) []*constraint.Contact {
	contacts := make([]*constraint.Contact, 0, len(pairs))
	threshold := p.config.RestitutionThreshold * p.gravity.Len() * h

	for _, pair := range pairs {
		colliderA := p.colliders[pair.ColliderA]
		colliderB := p.colliders[pair.ColliderB]

		boundA := colliderA.Bind(p.bodies.Get(colliderA.Body))
		boundB := colliderB.Bind(p.bodies.Get(colliderB.Body))

		simplex, hit := gjk.Intersect(boundA, boundB, gjk.FullTetrahedron)
		if !hit {
			continue
		}

		if colliderA.IsTrigger || colliderB.IsTrigger {
			p.Events.recordPair(pair.ColliderA, pair.ColliderB, true)
			continue
		}

		result, err := epa.EPA(boundA, boundB, simplex)
		if err != nil {
			p.Logger.Printf("narrow phase: skip pair (%d, %d): %v", pair.ColliderA, pair.ColliderB, err)
			continue
		}
		if !result.Valid() {
			p.Logger.Printf("narrow phase: skip pair (%d, %d): invalid contact normal=%v depth=%g",
				pair.ColliderA, pair.ColliderB, result.Normal, result.Depth)
			continue
		}

		p.Events.recordPair(pair.ColliderA, pair.ColliderB, false)

		points := epa.GenerateManifold(boundA, boundB, result)
		contact := constraint.NewContact(&p.bodies, colliderA.Body, colliderB.Body, result.Normal, points, p.config.ContactCompliance)
		contact.RestitutionThreshold = threshold
		contacts = append(contacts, contact)
	}

	return contacts
}

func (p *Physics) detectCollisions(h float64) {
	for _, contact := range p.NarrowPhase(p.BroadPhase(), h) {
		p.tempConstraints = append(p.tempConstraints, contact)
	}
}

