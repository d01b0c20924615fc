package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultReconcileTimeout bounds how long a dispatched action waits for a
// client acknowledgment before resolving synthetically, so a missing UI
// ack never stalls the conversation.
const DefaultReconcileTimeout = 5 * time.Second

// AwaitStatus is the terminal state of one reconciliation wait.
type AwaitStatus int

const (
	// AwaitResolved means a matching action_response arrived in time.
	AwaitResolved AwaitStatus = iota
	// AwaitTimedOut means the deadline elapsed with no matching response.
	AwaitTimedOut
	// AwaitAbandoned means the wait was short-circuited by cancellation.
	AwaitAbandoned
)

// PendingCall tracks one outstanding action sent to the client UI.
type PendingCall struct {
	ID       string
	Function string
	IssuedAt time.Time

	ch chan json.RawMessage
}

// Reconciler correlates actions pushed to the client with their eventual
// action_response by call id. It is a single demultiplexer keyed by call
// id, registered once per session, rather than a listener per call.
type Reconciler struct {
	mu      sync.Mutex
	timeout time.Duration
	pending map[string]*PendingCall
}

// NewReconciler creates a reconciler with the given ack timeout.
// Zero means DefaultReconcileTimeout.
func NewReconciler(timeout time.Duration) *Reconciler {
	if timeout <= 0 {
		timeout = DefaultReconcileTimeout
	}
	return &Reconciler{
		timeout: timeout,
		pending: make(map[string]*PendingCall),
	}
}

// Register creates a pending call with a fresh call id, unique within the
// session. The caller forwards the id to the client and then Awaits.
func (r *Reconciler) Register(function string) *PendingCall {
	call := &PendingCall{
		ID:       "fn_" + uuid.NewString(),
		Function: function,
		IssuedAt: time.Now(),
		// Buffered so Resolve never blocks on a waiter that has
		// already given up.
		ch: make(chan json.RawMessage, 1),
	}

	r.mu.Lock()
	r.pending[call.ID] = call
	r.mu.Unlock()

	return call
}

// Await suspends until the call is resolved, the timeout elapses, or ctx
// is canceled (user interruption). The pending call is deregistered on
// every path. On timeout the returned payload is nil and the caller
// substitutes the synthetic warning result; on abandonment the call is
// simply dropped, not force-resolved.
func (r *Reconciler) Await(ctx context.Context, call *PendingCall) (json.RawMessage, AwaitStatus) {
	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case payload := <-call.ch:
		return payload, AwaitResolved
	case <-timer.C:
		r.deregister(call.ID)
		return nil, AwaitTimedOut
	case <-ctx.Done():
		r.deregister(call.ID)
		return nil, AwaitAbandoned
	}
}

// Resolve delivers a client response to the matching pending call.
// Returns false when no call matches: either the id is unknown or the
// call already resolved or timed out, both benign races that are ignored.
// A call resolves at most once; duplicate deliveries are no-ops.
func (r *Reconciler) Resolve(callID string, payload json.RawMessage) bool {
	r.mu.Lock()
	call, ok := r.pending[callID]
	if ok {
		delete(r.pending, callID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	call.ch <- payload
	return true
}

// Abandon drops a pending call without resolving it, for when the action
// could not be delivered in the first place.
func (r *Reconciler) Abandon(callID string) {
	r.deregister(callID)
}

// PendingCount returns the number of outstanding calls.
func (r *Reconciler) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Reconciler) deregister(callID string) {
	r.mu.Lock()
	delete(r.pending, callID)
	r.mu.Unlock()
}
