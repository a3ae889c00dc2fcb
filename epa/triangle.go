package epa

import "github.com/go-gl/mathgl/mgl64"

// ClosestPointOnTriangle projects p onto the triangle abc, falling back to the
// closest edge or vertex when the projection leaves the triangle.
//
// Reference: Ericson, "Real-Time Collision Detection" (2004), 5.1.5
func ClosestPointOnTriangle(p, a, b, c mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)

	// Vertex region A
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	// Vertex region B
	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	// Edge region AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v))
	}

	// Vertex region C
	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	// Edge region AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w))
	}

	// Edge region BC
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	// Face region
	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

// Barycentric returns the weights of a, b and c for a point p lying in the
// triangle's plane, computed from signed sub-triangle areas. ok is false for a
// degenerate triangle.
func Barycentric(p, a, b, c mgl64.Vec3) (mgl64.Vec3, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	nn := n.Dot(n)
	if nn <= degenerateFaceEpsilon {
		return mgl64.Vec3{}, false
	}

	u := n.Dot(c.Sub(b).Cross(p.Sub(b))) / nn
	v := n.Dot(a.Sub(c).Cross(p.Sub(c))) / nn
	return mgl64.Vec3{u, v, 1 - u - v}, true
}
