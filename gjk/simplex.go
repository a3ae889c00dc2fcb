package gjk

import "github.com/go-gl/mathgl/mgl64"

// duplicateEpsilon is the squared distance under which two simplex points coincide.
const duplicateEpsilon = 1e-20

// SupportPoint is a vertex of the Minkowski difference A - B together with
// the support points on each shape and the direction that produced them.
// EPA uses A and B to rebuild witness points on the original shapes.
type SupportPoint struct {
	Point     mgl64.Vec3
	A         mgl64.Vec3
	B         mgl64.Vec3
	Direction mgl64.Vec3
}

// Simplex represents a set of 1-4 points in the Minkowski difference space.
// Points are ordered oldest first; Points[Count-1] is the latest support.
type Simplex struct {
	Points [4]SupportPoint
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) push(p SupportPoint) {
	s.Points[s.Count] = p
	s.Count++
}

// set replaces the content, oldest first.
func (s *Simplex) set(points ...SupportPoint) {
	copy(s.Points[:], points)
	s.Count = len(points)
}

// Slice returns the active points, oldest first.
func (s *Simplex) Slice() []SupportPoint {
	return s.Points[:s.Count]
}

// HasDuplicate reports whether two points of the simplex coincide.
func (s *Simplex) HasDuplicate() bool {
	for i := 0; i < s.Count; i++ {
		for j := i + 1; j < s.Count; j++ {
			if s.Points[i].Point.Sub(s.Points[j].Point).LenSqr() <= duplicateEpsilon {
				return true
			}
		}
	}
	return false
}

// Contains reports whether p coincides with a point of the simplex.
func (s *Simplex) Contains(p mgl64.Vec3) bool {
	for i := 0; i < s.Count; i++ {
		if s.Points[i].Point.Sub(p).LenSqr() <= duplicateEpsilon {
			return true
		}
	}
	return false
}
