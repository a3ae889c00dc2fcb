package epa

import (
	"fmt"
	"io"
	"math"

	"github.com/akmonengine/xpbd/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Polytope is a convex triangle mesh in Minkowski space enclosing the origin.
// Each vertex keeps the support data it was built from.
type Polytope struct {
	Vertices []gjk.SupportPoint
	Faces    []Face

	points []mgl64.Vec3 // Minkowski points, parallel to Vertices
}

// NewPolytope builds the initial polytope from a tetrahedron. The winding is
// fixed once from the signed volume so that all four faces point outward.
func NewPolytope(tetrahedron [4]gjk.SupportPoint) (*Polytope, error) {
	a := tetrahedron[0].Point
	b := tetrahedron[1].Point
	c := tetrahedron[2].Point
	d := tetrahedron[3].Point

	volume := b.Sub(a).Dot(c.Sub(a).Cross(d.Sub(a)))
	if math.Abs(volume) <= volumeEpsilon {
		return nil, errors.Wrapf(ErrDegenerateSimplex, "tetrahedron volume %g", volume)
	}
	if volume > 0 {
		tetrahedron[1], tetrahedron[2] = tetrahedron[2], tetrahedron[1]
	}

	p := &Polytope{
		Vertices: make([]gjk.SupportPoint, 0, 16),
		Faces:    make([]Face, 0, 32),
		points:   make([]mgl64.Vec3, 0, 16),
	}
	for _, v := range tetrahedron {
		p.Vertices = append(p.Vertices, v)
		p.points = append(p.points, v.Point)
	}

	p.Faces = append(p.Faces,
		newFace(p.points, 0, 1, 2), // opposite 3
		newFace(p.points, 0, 2, 3), // opposite 1
		newFace(p.points, 0, 3, 1), // opposite 2
		newFace(p.points, 1, 3, 2), // opposite 0
	)

	return p, nil
}

// ClosestFace returns the index of the non-degenerate face nearest to the
// origin, or -1 when every face is degenerate.
func (p *Polytope) ClosestFace() int {
	closest := -1
	minDistance := math.Inf(1)
	for i, face := range p.Faces {
		if face.degenerate {
			continue
		}
		if face.Distance < minDistance {
			minDistance = face.Distance
			closest = i
		}
	}
	return closest
}

// Expand inserts support into the polytope. Every face visible from the new
// point is removed and the hole is closed by fanning the silhouette edges to
// it. The silhouette keeps the direction of the removed faces, so the new
// faces inherit their outward winding.
//
// Returns false, leaving the polytope unchanged, when the point is already a
// vertex or sees no face (it does not extend the polytope).
func (p *Polytope) Expand(support gjk.SupportPoint) bool {
	for _, v := range p.points {
		if v.Sub(support.Point).LenSqr() <= duplicateEpsilon {
			return false
		}
	}

	var silhouette []edge
	kept := make([]Face, 0, len(p.Faces)+8)
	for _, face := range p.Faces {
		if !face.sees(p.points, support.Point) {
			kept = append(kept, face)
			continue
		}
		i, j, k := face.Indices[0], face.Indices[1], face.Indices[2]
		silhouette = toggleEdge(silhouette, edge{i, j})
		silhouette = toggleEdge(silhouette, edge{j, k})
		silhouette = toggleEdge(silhouette, edge{k, i})
	}

	if len(silhouette) == 0 {
		return false
	}

	p.Vertices = append(p.Vertices, support)
	p.points = append(p.points, support.Point)
	index := len(p.points) - 1

	for _, e := range silhouette {
		kept = append(kept, newFace(p.points, e.A, e.B, index))
	}
	p.Faces = kept

	return true
}

// Centroid is the average of the polytope vertices; it lies strictly inside.
func (p *Polytope) Centroid() mgl64.Vec3 {
	var centroid mgl64.Vec3
	for _, v := range p.points {
		centroid = centroid.Add(v)
	}
	return centroid.Mul(1.0 / float64(len(p.points)))
}

// FaceCentroid is the average of the three vertices of face f.
func (p *Polytope) FaceCentroid(f int) mgl64.Vec3 {
	face := p.Faces[f]
	sum := p.points[face.Indices[0]].Add(p.points[face.Indices[1]]).Add(p.points[face.Indices[2]])
	return sum.Mul(1.0 / 3.0)
}

// Point returns the Minkowski point of vertex i.
func (p *Polytope) Point(i int) mgl64.Vec3 {
	return p.points[i]
}

// WriteOBJ dumps the polytope as a Wavefront OBJ mesh, for inspection in a viewer.
func (p *Polytope) WriteOBJ(w io.Writer) error {
	for _, v := range p.points {
		if _, err := fmt.Fprintf(w, "v %g %g %g\n", v.X(), v.Y(), v.Z()); err != nil {
			return errors.Wrap(err, "write polytope vertex")
		}
	}
	for _, face := range p.Faces {
		// OBJ indices are 1-based
		if _, err := fmt.Fprintf(w, "f %d %d %d\n", face.Indices[0]+1, face.Indices[1]+1, face.Indices[2]+1); err != nil {
			return errors.Wrap(err, "write polytope face")
		}
	}
	return nil
}
