// Package realtime provides a client for OpenAI's Realtime API
// for low-latency speech-to-speech conversations with tool use.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sliceline/voiceorder/internal/log"
	"github.com/sliceline/voiceorder/pkg/intent"
)

const (
	RealtimeURL = "wss://api.openai.com/v1/realtime"
	Model       = "gpt-4o-realtime-preview-2024-12-17"
)

// ErrNotConnected is returned when an operation requires an open upstream
// connection.
var ErrNotConnected = errors.New("realtime: not connected")

// ToolCall is a function-call intent emitted by the model. RawArgs is the
// unparsed JSON argument string; parsing is the dispatcher's job so that
// malformed arguments surface as a structured result, not a dropped call.
type ToolCall struct {
	ID      string
	Name    string
	RawArgs string
}

// Channel is the subset of client operations the session layer needs to
// answer tool calls and control turn-taking. Satisfied by Client and by
// Mock in tests.
type Channel interface {
	SubmitToolResult(callID, output string) error
	CreateResponse() error
	CancelResponse() error
	TruncateItem(itemID string, audioEndMs int) error
}

// Client manages the WebSocket connection to the OpenAI Realtime API.
type Client struct {
	apiKey string
	ws     *websocket.Conn
	wsMu   sync.Mutex

	mu           sync.RWMutex
	connected    bool
	sessionReady bool
	closed       bool

	// Callbacks. Set these before Connect; they are invoked from the
	// single read loop, one at a time.
	OnSessionCreated  func()
	OnTranscript      func(role, text string, final bool)
	OnAudioDelta      func(audioBase64 string)
	OnAudioDone       func()
	OnToolCall        func(call ToolCall)
	OnResponseCreated func()
	OnResponseDone    func()
	OnOutputItem      func(itemID string)
	OnSpeechStarted   func()
	OnSpeechStopped   func()
	OnError           func(err error)
}

// NewClient creates a new Realtime API client.
func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey}
}

// Connect establishes the WebSocket connection to the Realtime API.
func (c *Client) Connect() error {
	url := fmt.Sprintf("%s?model=%s", RealtimeURL, Model)

	header := make(map[string][]string)
	header["Authorization"] = []string{"Bearer " + c.apiKey}
	header["OpenAI-Beta"] = []string{"realtime=v1"}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.Dial(url, header)
	if err != nil {
		return fmt.Errorf("realtime: connect: %w", err)
	}
	c.ws = ws

	// Respond to pings to keep the connection alive
	c.ws.SetPingHandler(func(appData string) error {
		c.wsMu.Lock()
		defer c.wsMu.Unlock()
		return c.ws.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	c.ws.SetReadDeadline(time.Now().Add(120 * time.Second))

	c.mu.Lock()
	c.connected = true
	c.closed = false
	c.mu.Unlock()

	go c.handleMessages()
	go c.keepAlive()

	return nil
}

// keepAlive sends periodic pings to keep the connection alive.
func (c *Client) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.RLock()
		closed := c.closed
		c.mu.RUnlock()
		if closed {
			return
		}

		c.wsMu.Lock()
		c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
		err := c.ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second))
		c.wsMu.Unlock()
		if err != nil {
			return
		}
	}
}

// ConfigureSession sets up the session with instructions, voice, and the
// tool schemas the model may call.
func (c *Client) ConfigureSession(instructions, voice string, tools []intent.Tool) error {
	if voice == "" {
		voice = "alloy"
	}

	apiTools := make([]map[string]any, len(tools))
	for i, tool := range tools {
		apiTools[i] = map[string]any{
			"type":        "function",
			"name":        tool.Name,
			"description": tool.Description,
			"parameters":  tool.Parameters,
		}
	}

	msg := map[string]any{
		"type": "session.update",
		"session": map[string]any{
			"modalities":          []string{"text", "audio"},
			"instructions":        instructions,
			"voice":               voice,
			"input_audio_format":  "pcm16",
			"output_audio_format": "pcm16",
			"input_audio_transcription": map[string]any{
				"model": "whisper-1",
			},
			"turn_detection": map[string]any{
				"type":                "server_vad",
				"threshold":           0.5,
				"prefix_padding_ms":   300,
				"silence_duration_ms": 500,
			},
			"tools":       apiTools,
			"tool_choice": "auto",
		},
	}

	return c.sendJSON(msg)
}

// SendAudio forwards base64 PCM16 audio from the browser to the API.
func (c *Client) SendAudio(audioBase64 string) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return c.sendJSON(map[string]any{
		"type":  "input_audio_buffer.append",
		"audio": audioBase64,
	})
}

// CommitAudio commits the audio buffer, triggering processing.
func (c *Client) CommitAudio() error {
	return c.sendJSON(map[string]string{
		"type": "input_audio_buffer.commit",
	})
}

// ClearAudio clears the audio input buffer.
func (c *Client) ClearAudio() error {
	return c.sendJSON(map[string]string{
		"type": "input_audio_buffer.clear",
	})
}

// SendText injects a user text message into the conversation.
// The caller decides when to request a response.
func (c *Client) SendText(text string) error {
	return c.sendJSON(map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type": "message",
			"role": "user",
			"content": []map[string]any{
				{"type": "input_text", "text": text},
			},
		},
	})
}

// SubmitToolResult sends a function_call_output back to the model.
// It does not request a follow-up response; turn-taking is controlled
// by the session's TurnController.
func (c *Client) SubmitToolResult(callID, output string) error {
	return c.sendJSON(map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  output,
		},
	})
}

// CreateResponse asks the model to generate its next turn.
func (c *Client) CreateResponse() error {
	return c.sendJSON(map[string]string{
		"type": "response.create",
	})
}

// CancelResponse interrupts the in-flight response.
func (c *Client) CancelResponse() error {
	return c.sendJSON(map[string]string{
		"type": "response.cancel",
	})
}

// TruncateItem cuts off an already-spoken conversation item at the given
// playback position, so the transcript matches what the user heard before
// interrupting.
func (c *Client) TruncateItem(itemID string, audioEndMs int) error {
	return c.sendJSON(map[string]any{
		"type":          "conversation.item.truncate",
		"item_id":       itemID,
		"content_index": 0,
		"audio_end_ms":  audioEndMs,
	})
}

// Close closes the WebSocket connection.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.connected = false
	c.mu.Unlock()

	if c.ws != nil {
		c.ws.Close()
	}
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && !c.closed
}

// IsReady returns whether the session is ready for conversation.
func (c *Client) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionReady
}

// handleMessages processes incoming WebSocket messages. A single goroutine
// reads and dispatches events in arrival order; callbacks run to completion
// before the next event is handled.
func (c *Client) handleMessages() {
	for {
		c.mu.RLock()
		closed := c.closed
		c.mu.RUnlock()
		if closed {
			return
		}

		c.ws.SetReadDeadline(time.Now().Add(120 * time.Second))
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.RLock()
			closed := c.closed
			c.mu.RUnlock()
			if !closed && c.OnError != nil {
				c.OnError(err)
			}
			return
		}

		var msg map[string]any
		if err := json.Unmarshal(message, &msg); err != nil {
			// A malformed event must never kill the read loop.
			log.Warn("realtime: dropping malformed event", "error", err)
			continue
		}

		c.handleEvent(msg)
	}
}

func (c *Client) handleEvent(msg map[string]any) {
	msgType, _ := msg["type"].(string)

	switch msgType {
	case "session.created":
		c.mu.Lock()
		c.sessionReady = true
		c.mu.Unlock()
		if c.OnSessionCreated != nil {
			c.OnSessionCreated()
		}

	case "session.updated":
		// Session configuration confirmed

	case "input_audio_buffer.speech_started":
		if c.OnSpeechStarted != nil {
			c.OnSpeechStarted()
		}

	case "input_audio_buffer.speech_stopped":
		if c.OnSpeechStopped != nil {
			c.OnSpeechStopped()
		}

	case "conversation.item.input_audio_transcription.completed":
		if transcript, ok := msg["transcript"].(string); ok && c.OnTranscript != nil {
			c.OnTranscript("user", transcript, true)
		}

	case "response.created":
		if c.OnResponseCreated != nil {
			c.OnResponseCreated()
		}

	case "response.output_item.added":
		if item, ok := msg["item"].(map[string]any); ok {
			if itemID, ok := item["id"].(string); ok && c.OnOutputItem != nil {
				c.OnOutputItem(itemID)
			}
		}

	case "response.audio.delta":
		if delta, ok := msg["delta"].(string); ok && c.OnAudioDelta != nil {
			c.OnAudioDelta(delta)
		}

	case "response.audio.done":
		if c.OnAudioDone != nil {
			c.OnAudioDone()
		}

	case "response.audio_transcript.delta":
		if delta, ok := msg["delta"].(string); ok && c.OnTranscript != nil {
			c.OnTranscript("assistant", delta, false)
		}

	case "response.audio_transcript.done":
		if transcript, ok := msg["transcript"].(string); ok && c.OnTranscript != nil {
			c.OnTranscript("assistant", transcript, true)
		}

	case "response.function_call_arguments.done":
		name, _ := msg["name"].(string)
		callID, _ := msg["call_id"].(string)
		args, _ := msg["arguments"].(string)
		if c.OnToolCall != nil {
			c.OnToolCall(ToolCall{ID: callID, Name: name, RawArgs: args})
		}

	case "response.done":
		if c.OnResponseDone != nil {
			c.OnResponseDone()
		}

	case "error":
		if errData, ok := msg["error"].(map[string]any); ok {
			code, _ := errData["code"].(string)
			// Benign race: our cancel crossed the response finishing.
			if code == "response_cancel_not_active" {
				return
			}
			if errMsg, ok := errData["message"].(string); ok && c.OnError != nil {
				c.OnError(fmt.Errorf("realtime: API error: %s", errMsg))
			}
		}
	}
}

// sendJSON sends a JSON message over the WebSocket.
func (c *Client) sendJSON(v any) error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()

	if c.ws == nil {
		return ErrNotConnected
	}

	return c.ws.WriteJSON(v)
}
