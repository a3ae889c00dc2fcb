package xpbd

import (
	"math"
	"testing"

	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/constraint"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pmezard/go-difflib/difflib"
)

func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestNew(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		p, err := New(DefaultConfig())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if p.Logger == nil {
			t.Error("Expected a default logger")
		}
		if _, ok := p.scheduler.(UniformSchedule); !ok {
			t.Errorf("Expected a uniform schedule, got %T", p.scheduler)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Substeps = 0
		if _, err := New(cfg); err == nil {
			t.Error("Expected an error for zero substeps")
		}
	})
}

func TestAddCollider(t *testing.T) {
	p := newTestPhysics(t, mgl64.Vec3{})
	body := p.AddBody(actor.NewParticle(mgl64.Vec3{}, 1))

	tests := []struct {
		name    string
		body    actor.BodyHandle
		shape   actor.Shape
		wantErr bool
	}{
		{"valid", body, &actor.Sphere{Radius: 1}, false},
		{"unknown body", actor.BodyHandle(42), &actor.Sphere{Radius: 1}, true},
		{"invalid body", actor.InvalidBody, &actor.Sphere{Radius: 1}, true},
		{"nil shape", body, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handle, err := p.AddCollider(tt.body, tt.shape)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr && handle != InvalidCollider {
				t.Errorf("Expected InvalidCollider, got %d", handle)
			}
			if !tt.wantErr && p.Collider(handle) == nil {
				t.Errorf("Expected collider %d to be registered", handle)
			}
		})
	}

	if p.Collider(InvalidCollider) != nil {
		t.Error("Expected InvalidCollider to resolve to nil")
	}
}

func TestAddConstraint(t *testing.T) {
	p := newTestPhysics(t, mgl64.Vec3{})
	a := p.AddBody(actor.NewParticle(mgl64.Vec3{}, 1))
	b := p.AddBody(actor.NewParticle(mgl64.Vec3{1, 0, 0}, 1))

	if err := p.AddConstraint(constraint.NewDistance(a, b, 1, 0)); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := p.AddConstraint(constraint.NewDistance(a, actor.BodyHandle(9), 1, 0)); err == nil {
		t.Error("Expected an error for an unknown body")
	}
	if err := p.AddConstraint(nil); err == nil {
		t.Error("Expected an error for a nil constraint")
	}
	if err := p.AddTempConstraint(constraint.NewFixation(actor.InvalidBody, mgl64.Vec3{}, mgl64.Vec3{}, 0)); err == nil {
		t.Error("Expected an error for an invalid body")
	}

	if len(p.Constraints()) != 1 {
		t.Errorf("Expected 1 constraint, got %d", len(p.Constraints()))
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		expected bool
	}{
		{"separated", 1, false},
		{"overlapping", 0.4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPhysics(t, mgl64.Vec3{})
			_, a := addSphere(t, p, mgl64.Vec3{}, 0.25, 1)
			_, b := addSphere(t, p, mgl64.Vec3{tt.distance, 0, 0}, 0.25, 1)

			hit, err := p.Overlaps(a, b)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if hit != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, hit)
			}
		})
	}

	t.Run("unknown collider", func(t *testing.T) {
		p := newTestPhysics(t, mgl64.Vec3{})
		if _, err := p.Overlaps(0, 1); err == nil {
			t.Error("Expected an error for unknown colliders")
		}
	})
}

func TestUpdate_InvalidStep(t *testing.T) {
	p := newTestPhysics(t, mgl64.Vec3{})
	for _, dt := range []float64{0, -1.0 / 60.0} {
		if err := p.Update(dt); err == nil {
			t.Errorf("Expected an error for dt = %v", dt)
		}
	}
}

func TestUpdate_FreeFall(t *testing.T) {
	p := newTestPhysics(t, mgl64.Vec3{0, -10, 0})
	h := p.AddBody(actor.NewParticle(mgl64.Vec3{0, 100, 0}, 1))

	for range 60 {
		if err := p.Update(1.0 / 60.0); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	// semi-implicit Euler lands slightly below the analytic 95
	body := p.Body(h)
	if !floatEqual(body.LinearVelocity().Y(), -10, 1e-6) {
		t.Errorf("Expected velocity -10 after 1s, got %v", body.LinearVelocity().Y())
	}
	if y := body.Position().Y(); y > 95 || y < 94.99 {
		t.Errorf("Expected height close to 95, got %v", y)
	}
}

func TestUpdate_CubeComesToRest(t *testing.T) {
	for _, schedule := range []string{ScheduleUniform, ScheduleExponential} {
		t.Run(schedule, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Gravity = [3]float64{0, -5, 0}
			cfg.Schedule = schedule
			p, err := New(cfg)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			// ground top at y=0
			addCube(t, p, mgl64.Vec3{0, -5, 0}, 10, 0)
			cube, _ := addCube(t, p, mgl64.Vec3{0, 1, 0}, 1, 1)

			for range 240 {
				if err := p.Update(1.0 / 60.0); err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
			}

			body := p.Body(cube)
			if speed := body.LinearVelocity().Len(); speed >= 0.01 {
				t.Errorf("Expected the cube to be at rest, speed %v", speed)
			}
			if y := body.Position().Y(); !floatEqual(y, 0.5, 1e-2) {
				t.Errorf("Expected the cube to rest at y=0.5, got %v", y)
			}
		})
	}
}

func TestUpdate_DistanceConstraint(t *testing.T) {
	p := newTestPhysics(t, mgl64.Vec3{})
	a := p.AddBody(actor.NewParticle(mgl64.Vec3{-0.5, 0, 0}, 1))
	b := p.AddBody(actor.NewParticle(mgl64.Vec3{0.5, 0, 0}, 1))

	// a spinning dumbbell
	p.Body(a).SetLinearVelocity(mgl64.Vec3{0, 1, 0})
	p.Body(b).SetLinearVelocity(mgl64.Vec3{0, -1, 0})

	distance := constraint.NewDistance(a, b, 1, 0)
	if err := p.AddConstraint(distance); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for frame := range 10 {
		if err := p.Update(1.0 / 60.0); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		length := p.Body(a).Position().Sub(p.Body(b).Position()).Len()
		if !floatEqual(length, 1, 1e-6) {
			t.Errorf("Frame %d: expected length 1, got %v", frame, length)
		}
	}

	// symmetric masses keep the midpoint
	midpoint := p.Body(a).Position().Add(p.Body(b).Position()).Mul(0.5)
	if !vec3Equal(midpoint, mgl64.Vec3{}, 1e-9) {
		t.Errorf("Expected the midpoint to stay at the origin, got %v", midpoint)
	}
}

func TestUpdate_Fixation(t *testing.T) {
	p := newTestPhysics(t, mgl64.Vec3{0, -9.81, 0})
	h := p.AddBody(actor.NewParticle(mgl64.Vec3{0, 2, 0}, 1))

	if err := p.AddConstraint(constraint.NewFixation(h, mgl64.Vec3{}, mgl64.Vec3{0, 2, 0}, 0)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for range 30 {
		p.Update(1.0 / 60.0)
	}

	if !vec3Equal(p.Body(h).Position(), mgl64.Vec3{0, 2, 0}, 1e-9) {
		t.Errorf("Expected the pinned particle to stay at (0, 2, 0), got %v", p.Body(h).Position())
	}
}

func TestUpdate_TempConstraintLastsOneSubstep(t *testing.T) {
	p := newTestPhysics(t, mgl64.Vec3{0, -9.81, 0})
	h := p.AddBody(actor.NewParticle(mgl64.Vec3{0, 2, 0}, 1))

	if err := p.AddTempConstraint(constraint.NewFixation(h, mgl64.Vec3{}, mgl64.Vec3{0, 2, 0}, 0)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := p.Update(1.0 / 60.0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(p.tempConstraints) != 0 {
		t.Errorf("Expected temporary constraints to be cleared, got %d", len(p.tempConstraints))
	}
	if len(p.Constraints()) != 0 {
		t.Errorf("Expected no persistent constraint, got %d", len(p.Constraints()))
	}
	if y := p.Body(h).Position().Y(); y >= 2 {
		t.Errorf("Expected the particle to fall once released, got y=%v", y)
	}
}

// runStack drops a small stack and dumps every body position after each frame
func runStack(t *testing.T) string {
	t.Helper()

	p := newTestPhysics(t, mgl64.Vec3{0, -9.81, 0})
	addCube(t, p, mgl64.Vec3{0, -5, 0}, 10, 0)
	for i := range 3 {
		addCube(t, p, mgl64.Vec3{0.1 * float64(i), 0.6 + 1.05*float64(i), 0}, 1, 1)
	}

	var dump string
	for range 60 {
		if err := p.Update(1.0 / 60.0); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		var positions []mgl64.Vec3
		p.Bodies().Each(func(_ actor.BodyHandle, body *actor.Body) {
			positions = append(positions, body.Position())
		})
		dump += spew.Sdump(positions)
	}
	return dump
}

func TestUpdate_Deterministic(t *testing.T) {
	first := runStack(t)
	second := runStack(t)

	if first == second {
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(first),
		B:        difflib.SplitLines(second),
		FromFile: "first run",
		ToFile:   "second run",
		Context:  2,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	t.Errorf("Expected identical runs:\n%s", diff)
}
