package auth

import (
	"sync"

	"github.com/google/uuid"
)

// FlowTracker correlates in-flight authorization attempts with the
// client identifier that initiated them. Each state token is consumed
// at most once; a token that is unknown and a token that was already
// consumed are indistinguishable to callers.
//
// Entries have no TTL: a flow the user abandons stays in the map until
// process exit. This is a known resource-leak boundary accepted for the
// in-memory design, not something the tracker papers over.
type FlowTracker struct {
	mu      sync.Mutex
	pending map[string]string // state token -> client identifier
}

// NewFlowTracker creates an empty tracker.
func NewFlowTracker() *FlowTracker {
	return &FlowTracker{
		pending: make(map[string]string),
	}
}

// Begin mints an unguessable state token for a new authorization
// attempt and records the client identifier behind it.
func (t *FlowTracker) Begin(clientID string) string {
	state := uuid.NewString()

	t.mu.Lock()
	t.pending[state] = clientID
	t.mu.Unlock()

	return state
}

// Consume retrieves and removes the client identifier for a state
// token. The second return is false when the token was never issued or
// was already consumed.
func (t *FlowTracker) Consume(state string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	clientID, ok := t.pending[state]
	if !ok {
		return "", false
	}

	delete(t.pending, state)

	return clientID, true
}

// PendingCount returns the number of unconsumed flow states.
func (t *FlowTracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.pending)
}
