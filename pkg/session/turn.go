package session

import (
	"sync"
	"time"

	"github.com/sliceline/voiceorder/internal/log"
	"github.com/sliceline/voiceorder/pkg/realtime"
)

// DefaultCancelGrace is how long Cancel waits for the upstream channel to
// acknowledge before forcing the turn state back to Idle.
const DefaultCancelGrace = 500 * time.Millisecond

// TurnState is the response turn-taking state of one session.
type TurnState int

const (
	// Idle means no model response is in flight; a turn request is
	// emitted immediately.
	Idle TurnState = iota
	// Responding means the model is generating; new turn requests queue.
	Responding
)

func (s TurnState) String() string {
	if s == Responding {
		return "responding"
	}
	return "idle"
}

// TurnController is the single-flight gate on model response creation.
// Excess requests queue and collapse into one follow-up turn; the queue
// guarantees forward progress, not per-request granularity.
type TurnController struct {
	mu      sync.Mutex
	state   TurnState
	queued  int
	gen     int // invalidates stale grace timers
	grace   time.Duration
	channel realtime.Channel
}

// NewTurnController creates a controller emitting on the given channel.
// Zero grace means DefaultCancelGrace.
func NewTurnController(channel realtime.Channel, grace time.Duration) *TurnController {
	if grace <= 0 {
		grace = DefaultCancelGrace
	}
	return &TurnController{
		channel: channel,
		grace:   grace,
	}
}

// RequestTurn asks for a new model response. If a response is already in
// flight the request is queued and nil is returned.
func (t *TurnController) RequestTurn() error {
	t.mu.Lock()
	if t.state == Responding {
		t.queued++
		t.mu.Unlock()
		return nil
	}
	t.state = Responding
	t.mu.Unlock()

	if err := t.channel.CreateResponse(); err != nil {
		t.mu.Lock()
		t.state = Idle
		t.mu.Unlock()
		return err
	}
	return nil
}

// NoteResponding marks the state Responding for responses the upstream
// started on its own (server VAD after the user speaks).
func (t *TurnController) NoteResponding() {
	t.mu.Lock()
	t.state = Responding
	t.mu.Unlock()
}

// Complete handles the upstream "response done" signal: transition to
// Idle and, if any requests queued while responding, collapse them into a
// single immediate follow-up turn.
func (t *TurnController) Complete() {
	t.mu.Lock()
	t.state = Idle
	t.gen++
	hasQueued := t.queued > 0
	t.queued = 0
	t.mu.Unlock()

	if hasQueued {
		if err := t.RequestTurn(); err != nil {
			log.Warn("turn: queued response request failed", "error", err)
		}
	}
}

// Cancel interrupts the in-flight response. A no-op while Idle. The state
// is forced back to Idle after the grace period even if the upstream
// never acknowledges, so the session cannot deadlock on an external party.
func (t *TurnController) Cancel() error {
	t.mu.Lock()
	if t.state == Idle {
		t.mu.Unlock()
		return nil
	}
	gen := t.gen
	t.mu.Unlock()

	err := t.channel.CancelResponse()

	time.AfterFunc(t.grace, func() {
		t.mu.Lock()
		stale := t.gen != gen || t.state == Idle
		t.mu.Unlock()
		if stale {
			// Acknowledged in time (Complete ran) or already idle.
			return
		}
		log.Debug("turn: no cancel acknowledgment, forcing idle")
		t.Complete()
	})

	return err
}

// State returns the current turn state.
func (t *TurnController) State() TurnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// QueuedCount returns how many turn requests are waiting.
func (t *TurnController) QueuedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queued
}
