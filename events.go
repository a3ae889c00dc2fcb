package xpbd

type EventType uint8

const (
	TRIGGER_ENTER EventType = iota
	COLLISION_ENTER
	TRIGGER_STAY
	COLLISION_STAY
	TRIGGER_EXIT
	COLLISION_EXIT
)

// Event is delivered to the listeners subscribed to its Type.
type Event interface {
	Type() EventType
}

// Every event carries the collider pair, lower handle first.
type (
	TriggerEnterEvent   struct{ Pair }
	TriggerStayEvent    struct{ Pair }
	TriggerExitEvent    struct{ Pair }
	CollisionEnterEvent struct{ Pair }
	CollisionStayEvent  struct{ Pair }
	CollisionExitEvent  struct{ Pair }
)

func (TriggerEnterEvent) Type() EventType   { return TRIGGER_ENTER }
func (TriggerStayEvent) Type() EventType    { return TRIGGER_STAY }
func (TriggerExitEvent) Type() EventType    { return TRIGGER_EXIT }
func (CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }
func (CollisionStayEvent) Type() EventType  { return COLLISION_STAY }
func (CollisionExitEvent) Type() EventType  { return COLLISION_EXIT }

type EventListener func(event Event)

// makePairKey orders the handles so (a, b) and (b, a) share a key
func makePairKey(a, b ColliderHandle) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{ColliderA: a, ColliderB: b}
}

type pairPhase uint8

const (
	phaseEnter pairPhase = iota
	phaseStay
	phaseExit
)

func newPairEvent(pair Pair, phase pairPhase, isTrigger bool) Event {
	if isTrigger {
		switch phase {
		case phaseEnter:
			return TriggerEnterEvent{pair}
		case phaseStay:
			return TriggerStayEvent{pair}
		default:
			return TriggerExitEvent{pair}
		}
	}
	switch phase {
	case phaseEnter:
		return CollisionEnterEvent{pair}
	case phaseStay:
		return CollisionStayEvent{pair}
	default:
		return CollisionExitEvent{pair}
	}
}

// Events collects the overlapping pairs seen during the substeps of one Update
// and turns them into Enter/Stay/Exit events when the Update ends.
type Events struct {
	listeners map[EventType][]EventListener
	buffer    []Event

	// true marks a trigger pair
	previousActivePairs map[Pair]bool
	currentActivePairs  map[Pair]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[Pair]bool),
		currentActivePairs:  make(map[Pair]bool),
	}
}

// Subscribe registers listener for eventType. Listeners run in subscription order.
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) recordPair(a, b ColliderHandle, isTrigger bool) {
	e.currentActivePairs[makePairKey(a, b)] = isTrigger
}

// diffPairs queues one event per pair that is new, still overlapping, or gone
// since the previous Update, then rotates the pair sets.
func (e *Events) diffPairs() {
	for pair, isTrigger := range e.currentActivePairs {
		phase := phaseEnter
		if _, ok := e.previousActivePairs[pair]; ok {
			phase = phaseStay
		}
		e.buffer = append(e.buffer, newPairEvent(pair, phase, isTrigger))
	}

	for pair, isTrigger := range e.previousActivePairs {
		if _, ok := e.currentActivePairs[pair]; !ok {
			e.buffer = append(e.buffer, newPairEvent(pair, phaseExit, isTrigger))
		}
	}

	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func (e *Events) flush() {
	e.diffPairs()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
