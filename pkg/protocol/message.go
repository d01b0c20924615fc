// Package protocol defines the WebSocket message types exchanged between
// the ordering service and the browser client. The service pushes UI
// actions (cart mutations awaiting on-screen confirmation) and the client
// answers with action responses correlated by function call id.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/sliceline/voiceorder/pkg/cart"
)

// MessageType identifies the type of a client-channel message.
type MessageType string

const (
	// Service → client messages
	TypeStatus     MessageType = "status"      // Connection lifecycle updates
	TypeActions    MessageType = "actions"     // UI actions to apply/confirm
	TypeTranscript MessageType = "transcript"  // Speech transcripts for display
	TypeCartUpdate MessageType = "cart_update" // Cart snapshot after a mutation
	TypeError      MessageType = "error"       // Recoverable error report

	// Client → service messages
	TypeActionResponse MessageType = "action_response" // Ack for a pushed action
	TypeOrderConfirmed MessageType = "order_confirmed" // Human confirmed the checkout form
)

// Envelope carries just the type discriminator, decoded first to route an
// inbound message.
type Envelope struct {
	Type MessageType `json:"type"`
}

// PeekType returns the message type of raw JSON without decoding the rest.
func PeekType(data []byte) (MessageType, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("protocol: parse message: %w", err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("protocol: message has no type")
	}
	return env.Type, nil
}

// Action is one UI action pushed to the client. On the wire the intent
// arguments are flattened alongside the fixed fields, matching what the
// browser client consumes:
//
//	{"type":"add_to_cart","item":"Margherita","quantity":1,
//	 "function_call_id":"...","function_name":"add_to_cart"}
type Action struct {
	Type           string
	FunctionCallID string
	FunctionName   string
	Args           map[string]any
}

// MarshalJSON flattens Args next to the fixed fields.
func (a Action) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(a.Args)+3)
	for k, v := range a.Args {
		m[k] = v
	}
	m["type"] = a.Type
	m["function_call_id"] = a.FunctionCallID
	m["function_name"] = a.FunctionName
	return json.Marshal(m)
}

// UnmarshalJSON splits the fixed fields back out of the flattened object.
func (a *Action) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	a.Type, _ = m["type"].(string)
	a.FunctionCallID, _ = m["function_call_id"].(string)
	a.FunctionName, _ = m["function_name"].(string)
	delete(m, "type")
	delete(m, "function_call_id")
	delete(m, "function_name")
	a.Args = m
	return nil
}

// ActionsMessage pushes one or more actions to the client.
type ActionsMessage struct {
	Type    MessageType `json:"type"`
	Actions []Action    `json:"actions"`
}

// NewActionsMessage wraps actions in an actions message.
func NewActionsMessage(actions ...Action) ActionsMessage {
	return ActionsMessage{Type: TypeActions, Actions: actions}
}

// ActionResponse is the client's acknowledgment for a pushed action,
// correlated by function call id.
type ActionResponse struct {
	Type           MessageType     `json:"type"`
	FunctionCallID string          `json:"function_call_id"`
	FunctionName   string          `json:"function_name,omitempty"`
	Output         json.RawMessage `json:"output,omitempty"`
}

// ParseActionResponse decodes an action_response message.
func ParseActionResponse(data []byte) (*ActionResponse, error) {
	var resp ActionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("protocol: parse action response: %w", err)
	}
	if resp.Type != TypeActionResponse {
		return nil, fmt.Errorf("protocol: expected %s, got %s", TypeActionResponse, resp.Type)
	}
	if resp.FunctionCallID == "" {
		return nil, fmt.Errorf("protocol: action response has no function_call_id")
	}
	return &resp, nil
}

// StatusMessage reports connection lifecycle to the client.
type StatusMessage struct {
	Type    MessageType `json:"type"`
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
}

// NewStatusMessage creates a status message.
func NewStatusMessage(status, message string) StatusMessage {
	return StatusMessage{Type: TypeStatus, Status: status, Message: message}
}

// TranscriptMessage carries a speech transcript for display.
type TranscriptMessage struct {
	Type  MessageType `json:"type"`
	Role  string      `json:"role"` // "user" or "assistant"
	Text  string      `json:"text"`
	Final bool        `json:"final"`
}

// NewTranscriptMessage creates a transcript message.
func NewTranscriptMessage(role, text string, final bool) TranscriptMessage {
	return TranscriptMessage{Type: TypeTranscript, Role: role, Text: text, Final: final}
}

// CartUpdateMessage carries a cart snapshot after a successful mutation.
type CartUpdateMessage struct {
	Type MessageType `json:"type"`
	Cart cart.State  `json:"cart"`
}

// NewCartUpdateMessage creates a cart update message.
func NewCartUpdateMessage(state cart.State) CartUpdateMessage {
	return CartUpdateMessage{Type: TypeCartUpdate, Cart: state}
}

// ErrorMessage reports a recoverable error to the client.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// NewErrorMessage creates an error message.
func NewErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}
