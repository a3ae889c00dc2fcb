package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/akmonengine/xpbd"
	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/epa"
	"github.com/akmonengine/xpbd/gjk"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionDebugger prints what the narrow phase sees for one pair
type CollisionDebugger interface {
	DebugGJK(a, b actor.BoundCollider, simplex gjk.Simplex, hit bool)
	DebugEPA(result epa.Result, err error)
	DebugManifold(a, b actor.BoundCollider, result epa.Result)
}

// SimpleDebugger writes to stdout
type SimpleDebugger struct{}

func (d *SimpleDebugger) DebugGJK(a, b actor.BoundCollider, simplex gjk.Simplex, hit bool) {
	fmt.Printf("GJK:\n")
	fmt.Printf("   A pos: %v\n", a.Transform.Position)
	fmt.Printf("   B pos: %v\n", b.Transform.Position)
	fmt.Printf("   Hit: %v, simplex points: %d\n", hit, simplex.Count)
	for i, point := range simplex.Slice() {
		fmt.Printf("   Point %d: %v (distance: %v)\n", i, point.Point, point.Point.Len())
	}
}

func (d *SimpleDebugger) DebugEPA(result epa.Result, err error) {
	if err != nil {
		fmt.Printf("EPA failed: %v\n", err)
		return
	}
	fmt.Printf("EPA:\n")
	fmt.Printf("   Normal: %v\n", result.Normal)
	fmt.Printf("   Depth: %.6f\n", result.Depth)
}

func (d *SimpleDebugger) DebugManifold(a, b actor.BoundCollider, result epa.Result) {
	points := epa.GenerateManifold(a, b, result)
	fmt.Printf("Manifold: %d points\n", len(points))
	for i, point := range points {
		fmt.Printf("   Point %d: A=%v B=%v depth=%.6f\n", i, point.PointA, point.PointB, point.Depth)
	}
}

type scene struct {
	physics *xpbd.Physics
	ground  actor.BodyHandle
	cubes   []actor.BodyHandle
}

// setupScene builds a static ground cube and a stack of unit cubes above it
func setupScene(cfg xpbd.Config, stack int) (*scene, error) {
	physics, err := xpbd.New(cfg)
	if err != nil {
		return nil, err
	}
	s := &scene{physics: physics}

	// Ground: top face at y=0
	s.ground = physics.AddBody(actor.NewRigidBody(mgl64.Vec3{0, -5, 0}, mgl64.QuatIdent(), 0, actor.ZeroInertia()))
	if _, err := physics.AddCollider(s.ground, actor.NewCube(10)); err != nil {
		return nil, err
	}

	for i := range stack {
		position := mgl64.Vec3{0, 0.5 + float64(i)*1.1, 0}
		cube := actor.NewRigidBody(position, mgl64.QuatIdent(), 1, actor.CubeInertia(1))
		cube.Material = actor.Material{Restitution: 0.2, Friction: 0.5}

		handle := physics.AddBody(cube)
		if _, err := physics.AddCollider(handle, actor.NewCube(1)); err != nil {
			return nil, err
		}
		s.cubes = append(s.cubes, handle)
	}

	physics.Events.Subscribe(xpbd.COLLISION_ENTER, func(event xpbd.Event) {
		e := event.(xpbd.CollisionEnterEvent)
		log.Printf("collision enter: %d %d", e.ColliderA, e.ColliderB)
	})

	return s, nil
}

// debugPair runs the narrow phase by hand on the ground and the lowest cube
func (s *scene) debugPair(debugger CollisionDebugger) {
	ground := s.physics.Collider(0)
	cube := s.physics.Collider(1)
	if cube == nil {
		return
	}
	a := ground.Bind(s.physics.Body(ground.Body))
	b := cube.Bind(s.physics.Body(cube.Body))

	simplex, hit := gjk.Intersect(a, b, gjk.FullTetrahedron)
	debugger.DebugGJK(a, b, simplex, hit)
	if !hit {
		return
	}

	result, err := epa.EPA(a, b, simplex)
	debugger.DebugEPA(result, err)
	if err == nil && result.Valid() {
		debugger.DebugManifold(a, b, result)
	}
}

func main() {
	configPath := flag.String("config", "", "YAML config file, defaults are used when empty")
	debug := flag.Bool("debug", false, "log the narrow phase to stderr")
	frames := flag.Int("frames", 300, "number of 60Hz frames to simulate")
	stack := flag.Int("stack", 3, "number of stacked cubes")
	dump := flag.Bool("dump", false, "dump the final bodies")
	flag.Parse()

	logger := log.New(io.Discard, "", 0)
	if *debug {
		logger = log.New(os.Stderr, "xpbd ", log.Lmicroseconds)
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg := xpbd.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = xpbd.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %+v\n", err)
			os.Exit(1)
		}
	}

	s, err := setupScene(cfg, *stack)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
	s.physics.Logger = logger

	const dt float64 = 1.0 / 60.0
	debugger := &SimpleDebugger{}

	for frame := 0; frame < *frames; frame++ {
		if *debug && frame%60 == 0 {
			s.debugPair(debugger)
		}

		if err := s.physics.Update(dt); err != nil {
			fmt.Fprintf(os.Stderr, "error: %+v\n", err)
			os.Exit(1)
		}

		if frame%30 == 0 {
			fmt.Printf("--- frame %d ---\n", frame)
			for i, handle := range s.cubes {
				body := s.physics.Body(handle)
				fmt.Printf("  cube %d: position=%v velocity=%v\n", i, body.Position(), body.LinearVelocity())
			}
		}
	}

	if *dump {
		for _, handle := range s.cubes {
			spew.Dump(s.physics.Body(handle))
		}
	}
}
