package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypePolyhedron
)

// Shape is local-space convex geometry.
type Shape interface {
	Type() ShapeType
	// Support returns the local point farthest along direction.
	// direction must not be the zero vector.
	Support(direction mgl64.Vec3) mgl64.Vec3
}

// Sphere represents a spherical collision shape centered on its body
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() ShapeType {
	return ShapeTypeSphere
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return direction.Normalize().Mul(s.Radius)
}

// Polyhedron is a convex vertex set with its face topology.
// Each face lists vertex indices counter-clockwise as seen from outside.
type Polyhedron struct {
	Vertices []mgl64.Vec3
	Faces    [][]int

	normals []mgl64.Vec3
}

// NewPolyhedron validates the topology and precomputes the face normals.
func NewPolyhedron(vertices []mgl64.Vec3, faces [][]int) (*Polyhedron, error) {
	if len(vertices) == 0 {
		return nil, errors.New("polyhedron has no vertices")
	}

	for f, face := range faces {
		if len(face) < 3 {
			return nil, errors.Errorf("face %d has %d vertices, need at least 3", f, len(face))
		}
		seen := make(map[int]bool, len(face))
		for _, index := range face {
			if index < 0 || index >= len(vertices) {
				return nil, errors.Errorf("face %d references vertex %d out of %d", f, index, len(vertices))
			}
			if seen[index] {
				return nil, errors.Errorf("face %d repeats vertex %d", f, index)
			}
			seen[index] = true
		}
	}

	p := &Polyhedron{Vertices: vertices, Faces: faces}
	p.normals = make([]mgl64.Vec3, len(faces))
	for f := range faces {
		p.normals[f] = newellNormal(vertices, faces[f])
	}

	return p, nil
}

// NewBox creates an axis-aligned box polyhedron centered on the origin.
// Vertex i has +x when bit 2 is set, +y for bit 1, +z for bit 0.
func NewBox(halfExtents mgl64.Vec3) *Polyhedron {
	vertices := make([]mgl64.Vec3, 8)
	for i := range vertices {
		v := halfExtents.Mul(-1)
		if i&4 != 0 {
			v[0] = halfExtents.X()
		}
		if i&2 != 0 {
			v[1] = halfExtents.Y()
		}
		if i&1 != 0 {
			v[2] = halfExtents.Z()
		}
		vertices[i] = v
	}

	faces := [][]int{
		{0, 4, 5, 1}, // -Y
		{0, 1, 3, 2}, // -X
		{1, 5, 7, 3}, // +Z
		{0, 2, 6, 4}, // -Z
		{4, 6, 7, 5}, // +X
		{2, 3, 7, 6}, // +Y
	}

	p, _ := NewPolyhedron(vertices, faces)
	return p
}

// NewCube creates a cube polyhedron of the given side length.
func NewCube(side float64) *Polyhedron {
	half := side / 2.0
	return NewBox(mgl64.Vec3{half, half, half})
}

func (p *Polyhedron) Type() ShapeType {
	return ShapeTypePolyhedron
}

func (p *Polyhedron) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return p.Vertices[p.SupportIndex(direction)]
}

// SupportIndex returns the index of the vertex farthest along direction.
// Ties keep the lowest index.
func (p *Polyhedron) SupportIndex(direction mgl64.Vec3) int {
	best := 0
	bestDot := -math.MaxFloat64
	for i, v := range p.Vertices {
		if d := v.Dot(direction); d > bestDot {
			bestDot = d
			best = i
		}
	}
	return best
}

// FaceNormal is the unit outward normal of face f in local space.
func (p *Polyhedron) FaceNormal(f int) mgl64.Vec3 {
	if p.normals == nil {
		p.normals = make([]mgl64.Vec3, len(p.Faces))
		for i := range p.Faces {
			p.normals[i] = newellNormal(p.Vertices, p.Faces[i])
		}
	}
	return p.normals[f]
}

// FacesAround lists the faces that contain vertex.
func (p *Polyhedron) FacesAround(vertex int) []int {
	var faces []int
	for f, face := range p.Faces {
		for _, index := range face {
			if index == vertex {
				faces = append(faces, f)
				break
			}
		}
	}
	return faces
}

// newellNormal computes a polygon normal robust to slightly non-planar faces.
func newellNormal(vertices []mgl64.Vec3, face []int) mgl64.Vec3 {
	var n mgl64.Vec3
	for i := range face {
		cur := vertices[face[i]]
		next := vertices[face[(i+1)%len(face)]]
		n[0] += (cur.Y() - next.Y()) * (cur.Z() + next.Z())
		n[1] += (cur.Z() - next.Z()) * (cur.X() + next.X())
		n[2] += (cur.X() - next.X()) * (cur.Y() + next.Y())
	}

	if n.Len() < 1e-12 {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}

// TangentBasis returns two unit vectors completing normal to an orthonormal basis.
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}
