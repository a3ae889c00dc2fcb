package epa

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/akmonengine/xpbd/gjk"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Helper functions
func vec3ApproxEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) <= tolerance &&
		math.Abs(a.Y()-b.Y()) <= tolerance &&
		math.Abs(a.Z()-b.Z()) <= tolerance
}

func isNormalized(v mgl64.Vec3, tolerance float64) bool {
	return math.Abs(v.Len()-1.0) <= tolerance
}

func supportPoints(points ...mgl64.Vec3) [4]gjk.SupportPoint {
	var tetrahedron [4]gjk.SupportPoint
	for i, p := range points {
		tetrahedron[i] = gjk.SupportPoint{Point: p, A: p}
	}
	return tetrahedron
}

func regularTetrahedron() [4]gjk.SupportPoint {
	return supportPoints(
		mgl64.Vec3{1, 1, 1},
		mgl64.Vec3{-1, -1, 1},
		mgl64.Vec3{-1, 1, -1},
		mgl64.Vec3{1, -1, -1},
	)
}

// checkWinding verifies that every face points away from the polytope centroid
// and that the mesh is closed: each directed edge has exactly one opposite.
func checkWinding(t *testing.T, p *Polytope) {
	t.Helper()

	centroid := p.Centroid()
	for f, face := range p.Faces {
		if face.degenerate {
			continue
		}
		if face.Normal.Dot(p.FaceCentroid(f).Sub(centroid)) <= 0 {
			t.Errorf("Face %d points inward:\n%s", f, spew.Sdump(face))
		}
		if !isNormalized(face.Normal, 1e-9) {
			t.Errorf("Face %d normal is not normalized: %v", f, face.Normal)
		}
	}

	edges := make(map[edge]int)
	for _, face := range p.Faces {
		i, j, k := face.Indices[0], face.Indices[1], face.Indices[2]
		edges[edge{i, j}]++
		edges[edge{j, k}]++
		edges[edge{k, i}]++
	}
	for e, count := range edges {
		if count != 1 || edges[edge{e.B, e.A}] != 1 {
			t.Errorf("Edge %v is not shared by exactly two faces:\n%s", e, spew.Sdump(p.Faces))
			return
		}
	}
}

func TestNewPolytope(t *testing.T) {
	t.Run("both orientations give outward faces", func(t *testing.T) {
		tetrahedron := regularTetrahedron()

		p, err := NewPolytope(tetrahedron)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(p.Faces) != 4 {
			t.Fatalf("Expected 4 faces, got %d", len(p.Faces))
		}
		checkWinding(t, p)

		tetrahedron[1], tetrahedron[2] = tetrahedron[2], tetrahedron[1]
		mirrored, err := NewPolytope(tetrahedron)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		checkWinding(t, mirrored)
	})

	t.Run("flat tetrahedron", func(t *testing.T) {
		_, err := NewPolytope(supportPoints(
			mgl64.Vec3{0, 0, 0},
			mgl64.Vec3{1, 0, 0},
			mgl64.Vec3{0, 1, 0},
			mgl64.Vec3{1, 1, 0},
		))
		if errors.Cause(err) != ErrDegenerateSimplex {
			t.Errorf("Expected ErrDegenerateSimplex, got %v", err)
		}
	})

	t.Run("face distances", func(t *testing.T) {
		p, _ := NewPolytope(regularTetrahedron())

		// each face plane of the regular tetrahedron lies at 1/√3 from its center
		for f, face := range p.Faces {
			if math.Abs(face.Distance-1/math.Sqrt(3)) > 1e-12 {
				t.Errorf("Face %d: expected distance %v, got %v", f, 1/math.Sqrt(3), face.Distance)
			}
		}
	})
}

func TestPolytope_ExpandKeepsWinding(t *testing.T) {
	p, err := NewPolytope(regularTetrahedron())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// grow toward a sphere of radius 2, the way EPA grows toward a shape boundary
	for i := range 20 {
		closest := p.ClosestFace()
		if closest < 0 {
			t.Fatalf("Iteration %d: no closest face", i)
		}
		point := p.Faces[closest].Normal.Mul(2)

		if !p.Expand(gjk.SupportPoint{Point: point}) {
			t.Fatalf("Iteration %d: expected %v to extend the polytope", i, point)
		}
		checkWinding(t, p)
		if t.Failed() {
			t.Fatalf("Iteration %d: winding broken", i)
		}
	}

	if len(p.Vertices) != 24 {
		t.Errorf("Expected 24 vertices, got %d", len(p.Vertices))
	}
	// closed triangle mesh: F = 2V - 4
	if len(p.Faces) != 2*len(p.Vertices)-4 {
		t.Errorf("Expected %d faces, got %d", 2*len(p.Vertices)-4, len(p.Faces))
	}
}

func TestPolytope_ExpandRejects(t *testing.T) {
	t.Run("existing vertex", func(t *testing.T) {
		p, _ := NewPolytope(regularTetrahedron())
		if p.Expand(gjk.SupportPoint{Point: mgl64.Vec3{1, 1, 1}}) {
			t.Error("Expected a duplicate vertex to be rejected")
		}
		if len(p.Vertices) != 4 || len(p.Faces) != 4 {
			t.Errorf("Expected polytope unchanged, got %d vertices %d faces", len(p.Vertices), len(p.Faces))
		}
	})

	t.Run("interior point", func(t *testing.T) {
		p, _ := NewPolytope(regularTetrahedron())
		if p.Expand(gjk.SupportPoint{Point: mgl64.Vec3{0.1, 0, 0}}) {
			t.Error("Expected an interior point to be rejected")
		}
	})
}

func TestPolytope_ClosestFace(t *testing.T) {
	// origin close to the face opposite to (0, 0, 3)
	p, err := NewPolytope(supportPoints(
		mgl64.Vec3{-1, -1, -0.1},
		mgl64.Vec3{1, -1, -0.1},
		mgl64.Vec3{0, 1, -0.1},
		mgl64.Vec3{0, 0, 3},
	))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	f := p.ClosestFace()
	if f < 0 {
		t.Fatal("Expected a closest face")
	}
	face := p.Faces[f]
	if math.Abs(face.Distance-0.1) > 1e-12 {
		t.Errorf("Expected distance 0.1, got %v", face.Distance)
	}
	if !vec3ApproxEqual(face.Normal, mgl64.Vec3{0, 0, -1}, 1e-12) {
		t.Errorf("Expected normal (0, 0, -1), got %v", face.Normal)
	}
	if !vec3ApproxEqual(face.Closest, mgl64.Vec3{0, 0, -0.1}, 1e-12) {
		t.Errorf("Expected closest point (0, 0, -0.1), got %v", face.Closest)
	}
}

func TestToggleEdge(t *testing.T) {
	var edges []edge
	edges = toggleEdge(edges, edge{0, 1})
	edges = toggleEdge(edges, edge{1, 2})
	edges = toggleEdge(edges, edge{1, 0})

	if len(edges) != 1 || edges[0] != (edge{1, 2}) {
		t.Errorf("Expected only edge {1 2}, got %v", edges)
	}
}

func TestPolytope_WriteOBJ(t *testing.T) {
	p, _ := NewPolytope(regularTetrahedron())

	var buf bytes.Buffer
	if err := p.WriteOBJ(&buf); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var vertices, faces int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		switch {
		case strings.HasPrefix(line, "v "):
			vertices++
		case strings.HasPrefix(line, "f "):
			faces++
			if strings.Contains(line, " 0") {
				t.Errorf("Expected 1-based indices, got %q", line)
			}
		}
	}
	if vertices != 4 || faces != 4 {
		t.Errorf("Expected 4 vertices and 4 faces, got %d and %d", vertices, faces)
	}
}

func BenchmarkPolytopeExpand(b *testing.B) {
	for i := 0; i < b.N; i++ {
		p, _ := NewPolytope(regularTetrahedron())
		for range 32 {
			closest := p.ClosestFace()
			p.Expand(gjk.SupportPoint{Point: p.Faces[closest].Normal.Mul(2)})
		}
	}
}
