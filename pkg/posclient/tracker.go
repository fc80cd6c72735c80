package posclient

import (
	"sync"

	"github.com/google/uuid"
)

// RequestState is where a resource's latest request stands
type RequestState int

const (
	StateIdle RequestState = iota
	StatePending
	StateApplied
	StateFailed
)

func (s RequestState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateApplied:
		return "applied"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Resource names
const (
	ResourceCart     = "cart"
	ResourceCheckout = "checkout"
)

// LineResource names the resource for a single cart line
func LineResource(itemID uuid.UUID) string {
	return "line:" + itemID.String()
}

// Tracker allows one in-flight request per resource
type Tracker struct {
	mu     sync.Mutex
	states map[string]RequestState
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]RequestState)}
}

// Begin moves resource to pending. The returned func records the outcome and
// must be called exactly once.
func (t *Tracker) Begin(resource string) (func(err error), error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.states[resource] == StatePending {
		return nil, ErrRequestPending
	}
	t.states[resource] = StatePending

	return func(err error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if err != nil {
			t.states[resource] = StateFailed
			return
		}
		t.states[resource] = StateApplied
	}, nil
}

// State reports the state of resource
func (t *Tracker) State(resource string) RequestState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[resource]
}

// Pending reports whether a request on resource is in flight
func (t *Tracker) Pending(resource string) bool {
	return t.State(resource) == StatePending
}
