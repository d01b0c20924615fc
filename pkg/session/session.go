// Package session owns all per-connection conversation state: the cart,
// the customer profile, response turn-taking, and the reconciliation of
// UI actions with their client acknowledgments. One Session is created
// per client connection; nothing is shared between sessions.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sliceline/voiceorder/internal/log"
	"github.com/sliceline/voiceorder/pkg/cart"
	"github.com/sliceline/voiceorder/pkg/intent"
	"github.com/sliceline/voiceorder/pkg/menu"
	"github.com/sliceline/voiceorder/pkg/protocol"
	"github.com/sliceline/voiceorder/pkg/realtime"
)

// ErrChannelUnavailable is returned when a send is attempted with no open
// client channel. The action is dropped, not retried; the customer will
// simply repeat themselves.
var ErrChannelUnavailable = errors.New("session: client channel unavailable")

// ClientSender pushes JSON messages to the browser client.
type ClientSender interface {
	SendJSON(v any) error
}

// Options configures a Session.
type Options struct {
	Catalog  *menu.Catalog
	Upstream realtime.Channel
	Client   ClientSender

	// ReconcileTimeout and CancelGrace default to the package constants
	// when zero. Tests shorten them.
	ReconcileTimeout time.Duration
	CancelGrace      time.Duration

	// OnCartUpdate, when set, receives a snapshot after every successful
	// mutation (dashboard broadcast).
	OnCartUpdate func(cart.State)
}

// Session is the per-connection conversation state machine.
type Session struct {
	ID string

	mu         sync.Mutex // guards cart, profile, dispatcher, bookkeeping
	logger     *slog.Logger
	cart       *cart.Store
	profile    cart.Profile
	dispatcher *intent.Dispatcher
	turn       *TurnController
	rec        *Reconciler
	upstream   realtime.Channel
	client     ClientSender
	onCart     func(cart.State)

	// Truncation bookkeeping for the in-flight spoken message.
	speechItemID string
	speechStart  time.Time

	// inflight is canceled on user interruption to short-circuit any
	// reconciliation wait, then replaced for the next exchange.
	inflightMu     sync.Mutex
	inflight       context.Context
	cancelInflight context.CancelFunc
}

// New creates a session over the given upstream and client channels.
func New(opts Options) *Session {
	store := cart.NewStore(opts.Catalog)

	s := &Session{
		ID:       uuid.NewString(),
		cart:     store,
		turn:     NewTurnController(opts.Upstream, opts.CancelGrace),
		rec:      NewReconciler(opts.ReconcileTimeout),
		upstream: opts.Upstream,
		client:   opts.Client,
		onCart:   opts.OnCartUpdate,
	}
	s.logger = log.With("session", s.ID)
	s.dispatcher = intent.NewDispatcher(store, &s.profile)
	s.dispatcher.OnCheckout = func(state cart.State, profile cart.Profile) {
		s.logger.Info("checkout started",
			"items", len(state.Items), "total", state.Total, "customer", profile.Name)
	}
	s.inflight, s.cancelInflight = context.WithCancel(context.Background())

	return s
}

// HandleToolCall processes one function-call intent from the model:
// apply it to the cart, forward the action to the client UI, wait for the
// acknowledgment (or timeout), and submit the result upstream so the
// conversation can continue. It blocks until the round trip settles, so
// callers run it off the upstream read loop.
func (s *Session) HandleToolCall(call realtime.ToolCall) {
	s.logger.Debug("tool call", "function", call.Name, "call_id", call.ID)

	s.mu.Lock()
	result := s.dispatcher.Dispatch(call.Name, call.RawArgs)
	s.mu.Unlock()

	if result.Success {
		s.publishCart()
	}

	output, interrupted := s.reconcile(call, result)
	if interrupted {
		// The user barged in; the pending call is abandoned. Still
		// submit the output so the conversation log stays consistent,
		// but let server VAD start the next turn.
		if err := s.upstream.SubmitToolResult(call.ID, output); err != nil {
			s.logger.Warn("tool result submit failed after interrupt", "error", err)
		}
		return
	}

	if err := s.upstream.SubmitToolResult(call.ID, output); err != nil {
		s.logger.Error("tool result submit failed", "function", call.Name, "error", err)
		return
	}

	if err := s.turn.RequestTurn(); err != nil {
		s.logger.Warn("turn request failed", "error", err)
	}
}

// reconcile forwards the action to the client and waits for its
// acknowledgment. The dispatcher result stays authoritative; the
// acknowledgment only adds a warning when it is missing or reports a UI
// failure. The second return value reports user interruption.
func (s *Session) reconcile(call realtime.ToolCall, result intent.Result) (string, bool) {
	pending := s.rec.Register(call.Name)

	action := protocol.Action{
		Type:           call.Name,
		FunctionCallID: pending.ID,
		FunctionName:   call.Name,
		Args:           parseArgs(call.RawArgs),
	}

	if err := s.client.SendJSON(protocol.NewActionsMessage(action)); err != nil {
		// Channel unavailable: drop the round trip and answer from the
		// dispatcher result alone.
		s.rec.Abandon(pending.ID)
		s.logger.Warn("client channel unavailable, skipping ack wait",
			"function", call.Name, "error", err)
		return result.JSON(), false
	}

	payload, status := s.rec.Await(s.currentInflight(), pending)
	switch status {
	case AwaitResolved:
		var ack struct {
			Success *bool  `json:"success"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(payload, &ack); err == nil && ack.Success != nil && !*ack.Success {
			result.Warning = "client UI reported: " + ack.Error
		}
	case AwaitTimedOut:
		s.logger.Warn("no client response in time", "function", call.Name, "call_id", pending.ID)
		result.Warning = "no response in time"
	case AwaitAbandoned:
		return result.JSON(), true
	}

	return result.JSON(), false
}

// HandleClientMessage routes one message from the browser client. A
// malformed message is logged and swallowed; it never terminates the
// session.
func (s *Session) HandleClientMessage(data []byte) {
	msgType, err := protocol.PeekType(data)
	if err != nil {
		s.logger.Warn("dropping malformed client message", "error", err)
		return
	}

	switch msgType {
	case protocol.TypeActionResponse:
		resp, err := protocol.ParseActionResponse(data)
		if err != nil {
			s.logger.Warn("dropping bad action response", "error", err)
			return
		}
		if !s.rec.Resolve(resp.FunctionCallID, resp.Output) {
			// Late or unknown ack after timeout already resolved the
			// call. Benign race, not an error.
			s.logger.Debug("ignoring unmatched action response", "call_id", resp.FunctionCallID)
		}

	case protocol.TypeOrderConfirmed:
		// The human confirmed the checkout form; only now is the cart
		// cleared.
		s.mu.Lock()
		n := s.cart.Clear()
		s.mu.Unlock()
		s.logger.Info("order confirmed", "items", n)
		s.publishCart()

	default:
		s.logger.Debug("ignoring client message", "type", string(msgType))
	}
}

// HandleResponseCreated marks the turn state Responding, covering
// responses the upstream starts on its own after server VAD.
func (s *Session) HandleResponseCreated() {
	s.turn.NoteResponding()
}

// HandleResponseDone handles the upstream response-complete signal.
func (s *Session) HandleResponseDone() {
	s.mu.Lock()
	s.speechItemID = ""
	s.mu.Unlock()
	s.turn.Complete()
}

// HandleOutputItem records the conversation item currently being spoken,
// for truncation if the user interrupts.
func (s *Session) HandleOutputItem(itemID string) {
	s.mu.Lock()
	s.speechItemID = itemID
	s.speechStart = time.Now()
	s.mu.Unlock()
}

// Interrupt handles user barge-in: abandon any in-flight reconciliation
// wait, truncate the spoken message at the point the user stopped
// listening, and cancel the current response turn.
func (s *Session) Interrupt() {
	s.inflightMu.Lock()
	s.cancelInflight()
	s.inflight, s.cancelInflight = context.WithCancel(context.Background())
	s.inflightMu.Unlock()

	s.mu.Lock()
	itemID := s.speechItemID
	elapsed := time.Since(s.speechStart)
	s.speechItemID = ""
	s.mu.Unlock()

	if itemID != "" {
		if err := s.upstream.TruncateItem(itemID, int(elapsed.Milliseconds())); err != nil {
			s.logger.Warn("truncate failed", "item", itemID, "error", err)
		}
	}

	if err := s.turn.Cancel(); err != nil {
		s.logger.Warn("cancel failed", "error", err)
	}
}

// RequestTurn asks the turn controller for a new model response.
func (s *Session) RequestTurn() error {
	return s.turn.RequestTurn()
}

// Snapshot returns the current cart state.
func (s *Session) Snapshot() cart.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Snapshot()
}

// Profile returns a copy of the customer profile.
func (s *Session) Profile() cart.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Close abandons any in-flight waits.
func (s *Session) Close() {
	s.inflightMu.Lock()
	s.cancelInflight()
	s.inflightMu.Unlock()
}

func (s *Session) publishCart() {
	s.mu.Lock()
	state := s.cart.Snapshot()
	s.mu.Unlock()

	if err := s.client.SendJSON(protocol.NewCartUpdateMessage(state)); err != nil {
		s.logger.Warn("cart update send failed", "error", err)
	}
	if s.onCart != nil {
		s.onCart(state)
	}
}

func (s *Session) currentInflight() context.Context {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	return s.inflight
}

func parseArgs(rawArgs string) map[string]any {
	if rawArgs == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(rawArgs), &m); err != nil {
		return nil
	}
	return m
}
