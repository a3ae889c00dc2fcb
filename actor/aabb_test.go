package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestAABBOverlaps(t *testing.T) {
	unit := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}

	tests := []struct {
		name     string
		other    AABB
		expected bool
	}{
		{"identical", unit, true},
		{"partial overlap on X", AABB{Min: mgl64.Vec3{0.5, 0, 0}, Max: mgl64.Vec3{1.5, 1, 1}}, true},
		{"contained", AABB{Min: mgl64.Vec3{0.25, 0.25, 0.25}, Max: mgl64.Vec3{0.75, 0.75, 0.75}}, true},
		{"face touching", AABB{Min: mgl64.Vec3{1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}, true},
		{"corner touching", AABB{Min: mgl64.Vec3{1, 1, 1}, Max: mgl64.Vec3{2, 2, 2}}, true},
		{"separated on X", AABB{Min: mgl64.Vec3{2, 0, 0}, Max: mgl64.Vec3{3, 1, 1}}, false},
		{"separated on Y", AABB{Min: mgl64.Vec3{0, -2, 0}, Max: mgl64.Vec3{1, -1, 1}}, false},
		{"separated on Z", AABB{Min: mgl64.Vec3{0, 0, 1.01}, Max: mgl64.Vec3{1, 1, 2}}, false},
		{"point inside", AABB{Min: mgl64.Vec3{0.5, 0.5, 0.5}, Max: mgl64.Vec3{0.5, 0.5, 0.5}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := unit.Overlaps(tt.other); result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
			// symmetry
			if result := tt.other.Overlaps(unit); result != tt.expected {
				t.Errorf("Expected %v (symmetric), got %v", tt.expected, result)
			}
		})
	}
}

func TestAABBContainsPoint(t *testing.T) {
	aabb := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}

	tests := []struct {
		name     string
		point    mgl64.Vec3
		expected bool
	}{
		{"center", mgl64.Vec3{0, 0, 0}, true},
		{"corner", mgl64.Vec3{1, 1, 1}, true},
		{"outside", mgl64.Vec3{1.1, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := aabb.ContainsPoint(tt.point); result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	t.Run("box", func(t *testing.T) {
		b := BoundCollider{
			Shape:     NewBox(mgl64.Vec3{1, 2, 3}),
			Transform: Transform{Position: mgl64.Vec3{5, 0, 0}, Rotation: mgl64.QuatIdent()},
		}
		bounds := b.Bounds()
		if !vec3Equal(bounds.Min, mgl64.Vec3{4, -2, -3}, 1e-12) || !vec3Equal(bounds.Max, mgl64.Vec3{6, 2, 3}, 1e-12) {
			t.Errorf("Expected [(4, -2, -3), (6, 2, 3)], got %v", bounds)
		}
	})

	t.Run("rotated cube", func(t *testing.T) {
		b := BoundCollider{
			Shape:     NewCube(1),
			Transform: Transform{Rotation: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})},
		}
		bounds := b.Bounds()
		half := math.Sqrt2 / 2
		if !vec3Equal(bounds.Max, mgl64.Vec3{half, 0.5, half}, 1e-9) {
			t.Errorf("Expected max (%v, 0.5, %v), got %v", half, half, bounds.Max)
		}
		if !vec3Equal(bounds.Min, bounds.Max.Mul(-1), 1e-9) {
			t.Errorf("Expected symmetric bounds, got %v", bounds)
		}
	})

	t.Run("sphere", func(t *testing.T) {
		b := BoundCollider{
			Shape:     &Sphere{Radius: 0.5},
			Transform: Transform{Position: mgl64.Vec3{0, 1, 0}, Rotation: mgl64.QuatIdent()},
		}
		bounds := b.Bounds().Expand(0.1)
		if !vec3Equal(bounds.Min, mgl64.Vec3{-0.6, 0.4, -0.6}, 1e-12) || !vec3Equal(bounds.Max, mgl64.Vec3{0.6, 1.6, 0.6}, 1e-12) {
			t.Errorf("Expected [(-0.6, 0.4, -0.6), (0.6, 1.6, 0.6)], got %v", bounds)
		}
	})
}
