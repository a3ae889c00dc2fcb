package actor

import "github.com/go-gl/mathgl/mgl64"

// Collider attaches immutable local geometry to exactly one body.
// It holds the body's handle, never the body itself.
type Collider struct {
	Body  BodyHandle
	Shape Shape

	// IsTrigger colliders report overlaps without a contact response
	IsTrigger bool
}

func NewCollider(body BodyHandle, shape Shape) *Collider {
	return &Collider{Body: body, Shape: shape}
}

// Bind resolves the collider against its body's current pose.
// The returned value is only meaningful until the body moves again.
func (c *Collider) Bind(body *Body) BoundCollider {
	return BoundCollider{
		Shape:     c.Shape,
		Transform: body.Transform,
	}
}

// BoundCollider answers world-space geometric queries for one pose.
type BoundCollider struct {
	Shape     Shape
	Transform Transform
}

// Support returns the world point of the shape farthest along direction.
func (b BoundCollider) Support(direction mgl64.Vec3) mgl64.Vec3 {
	local := b.Shape.Support(b.Transform.DirectionToLocal(direction))
	return b.Transform.PointToWorld(local)
}

func (b BoundCollider) PointToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return b.Transform.PointToLocal(world)
}

func (b BoundCollider) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.Transform.PointToWorld(local)
}

// Polyhedron exposes the topology when the shape has one.
func (b BoundCollider) Polyhedron() (*Polyhedron, bool) {
	p, ok := b.Shape.(*Polyhedron)
	return p, ok
}

// ContactFace picks, among the faces around the support vertex along
// direction, the one whose world normal is most aligned with direction.
// It returns -1 for shapes without topology.
func (b BoundCollider) ContactFace(direction mgl64.Vec3) int {
	p, ok := b.Polyhedron()
	if !ok || len(p.Faces) == 0 {
		return -1
	}

	localDirection := b.Transform.DirectionToLocal(direction)
	vertex := p.SupportIndex(localDirection)

	best := -1
	bestDot := -2.0
	for _, f := range p.FacesAround(vertex) {
		if d := p.FaceNormal(f).Dot(localDirection); d > bestDot {
			bestDot = d
			best = f
		}
	}
	return best
}

// FacePolygon returns the world-space vertices of face f, in winding order.
func (b BoundCollider) FacePolygon(f int) []mgl64.Vec3 {
	p, ok := b.Polyhedron()
	if !ok {
		return nil
	}

	polygon := make([]mgl64.Vec3, len(p.Faces[f]))
	for i, index := range p.Faces[f] {
		polygon[i] = b.Transform.PointToWorld(p.Vertices[index])
	}
	return polygon
}

// FaceNormal returns the world-space outward normal of face f.
func (b BoundCollider) FaceNormal(f int) mgl64.Vec3 {
	p, ok := b.Polyhedron()
	if !ok {
		return mgl64.Vec3{}
	}
	return b.Transform.DirectionToWorld(p.FaceNormal(f))
}
