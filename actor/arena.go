package actor

// BodyHandle is a stable index into an Arena.
type BodyHandle int

// InvalidBody never resolves to a body.
const InvalidBody BodyHandle = -1

// Arena owns every body of a simulation. Constraints and colliders refer to
// bodies through handles, which stay valid for the arena's lifetime.
type Arena struct {
	bodies []*Body
}

func (a *Arena) Add(body *Body) BodyHandle {
	a.bodies = append(a.bodies, body)
	return BodyHandle(len(a.bodies) - 1)
}

// Get returns the body behind handle, or nil when the handle is unknown.
func (a *Arena) Get(handle BodyHandle) *Body {
	if handle < 0 || int(handle) >= len(a.bodies) {
		return nil
	}
	return a.bodies[handle]
}

func (a *Arena) Len() int {
	return len(a.bodies)
}

// Each visits bodies in handle order.
func (a *Arena) Each(fn func(handle BodyHandle, body *Body)) {
	for i, body := range a.bodies {
		fn(BodyHandle(i), body)
	}
}
