package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/sliceline/voiceorder/internal/httpc"
	"github.com/sliceline/voiceorder/internal/log"
	"github.com/sliceline/voiceorder/pkg/cart"
	"github.com/sliceline/voiceorder/pkg/intent"
	"github.com/sliceline/voiceorder/pkg/protocol"
	"github.com/sliceline/voiceorder/pkg/realtime"
	"github.com/sliceline/voiceorder/pkg/session"
)

const sessionsURL = "https://api.openai.com/v1/realtime/sessions"

// handleSessionToken mints an ephemeral realtime token for browser clients
// that hold their own upstream connection. The agent configuration
// (instructions and tool schemas) is attached server-side so the client
// never sees the API key or the prompt.
func (s *Server) handleSessionToken(c *fiber.Ctx) error {
	payload, err := json.Marshal(map[string]any{
		"model":        realtime.Model,
		"voice":        s.opts.Voice,
		"instructions": intent.Instructions(s.opts.Catalog),
		"tools":        intent.Tools(),
	})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build session request",
		})
	}

	req, err := http.NewRequestWithContext(c.Context(), http.MethodPost, sessionsURL, bytes.NewReader(payload))
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build session request",
		})
	}
	req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpc.Do(req)
	if err != nil {
		log.Error("session token request failed", "error", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "upstream unavailable",
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "upstream read failed",
		})
	}

	c.Set("Content-Type", "application/json")
	return c.Status(resp.StatusCode).Send(body)
}

// wsSender adapts a fiber websocket connection to the session's client
// channel. WriteJSON is not safe for concurrent use, so a mutex
// serializes the session goroutines that push through it.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsSender) SendJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

// Client-channel message types handled in the web layer rather than the
// session. Audio rides the same JSON channel as everything else, base64
// in, base64 out.
const (
	typeInputAudio  = "input_audio"
	typeCommitAudio = "commit_audio"
	typeClearAudio  = "clear_audio"
	typeUserText    = "user_text"
	typeAudioDelta  = "audio_delta"
	typeAudioDone   = "audio_done"
)

type audioFrame struct {
	Audio string `json:"audio"`
	Text  string `json:"text"`
}

// handleOrderWS runs one ordering conversation: it opens an upstream
// realtime connection, binds a session to it, and relays events between
// the browser and the model until either side disconnects. Blocks for the
// connection lifetime.
func (s *Server) handleOrderWS(conn *websocket.Conn) {
	sender := &wsSender{conn: conn}

	rt := realtime.NewClient(s.opts.APIKey)
	sess := session.New(session.Options{
		Catalog:  s.opts.Catalog,
		Upstream: rt,
		Client:   sender,
		OnCartUpdate: func(state cart.State) {
			s.dashboard.BroadcastJSON(protocol.NewCartUpdateMessage(state))
		},
	})
	logger := log.With("session", sess.ID)

	rt.OnSessionCreated = func() {
		if err := rt.ConfigureSession(intent.Instructions(s.opts.Catalog), s.opts.Voice, intent.Tools()); err != nil {
			logger.Error("session configure failed", "error", err)
			sender.SendJSON(protocol.NewErrorMessage("assistant setup failed"))
			return
		}
		sender.SendJSON(protocol.NewStatusMessage("ready", "assistant connected"))
	}
	rt.OnToolCall = func(call realtime.ToolCall) {
		// The round trip blocks on the browser ack; run it off the
		// upstream read loop so other events keep flowing.
		go sess.HandleToolCall(call)
	}
	rt.OnTranscript = func(role, text string, final bool) {
		msg := protocol.NewTranscriptMessage(role, text, final)
		sender.SendJSON(msg)
		if final {
			s.dashboard.BroadcastJSON(msg)
		}
	}
	rt.OnAudioDelta = func(audioBase64 string) {
		sender.SendJSON(map[string]string{"type": typeAudioDelta, "audio": audioBase64})
	}
	rt.OnAudioDone = func() {
		sender.SendJSON(map[string]string{"type": typeAudioDone})
	}
	rt.OnResponseCreated = sess.HandleResponseCreated
	rt.OnResponseDone = sess.HandleResponseDone
	rt.OnOutputItem = sess.HandleOutputItem
	rt.OnSpeechStarted = func() {
		sess.Interrupt()
		sender.SendJSON(protocol.NewStatusMessage("listening", ""))
	}
	rt.OnError = func(err error) {
		logger.Warn("upstream error", "error", err)
		sender.SendJSON(protocol.NewErrorMessage(err.Error()))
	}

	if err := rt.Connect(); err != nil {
		logger.Error("upstream connect failed", "error", err)
		sender.SendJSON(protocol.NewErrorMessage("assistant unavailable"))
		return
	}
	defer func() {
		sess.Close()
		rt.Close()
		logger.Info("session closed")
	}()

	logger.Info("session started")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("client read error", "error", err)
			}
			return
		}
		s.routeClientMessage(logger, rt, sess, data)
	}
}

// routeClientMessage splits the inbound stream: audio and text frames go
// straight upstream, everything else is the session's protocol.
func (s *Server) routeClientMessage(logger *slog.Logger, rt *realtime.Client, sess *session.Session, data []byte) {
	msgType, err := protocol.PeekType(data)
	if err != nil {
		logger.Warn("unreadable client message", "error", err)
		return
	}

	switch string(msgType) {
	case typeInputAudio:
		var frame audioFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Audio == "" {
			logger.Warn("malformed audio frame")
			return
		}
		if err := rt.SendAudio(frame.Audio); err != nil {
			logger.Warn("audio forward failed", "error", err)
		}
	case typeCommitAudio:
		if err := rt.CommitAudio(); err != nil {
			logger.Warn("audio commit failed", "error", err)
		}
	case typeClearAudio:
		if err := rt.ClearAudio(); err != nil {
			logger.Warn("audio clear failed", "error", err)
		}
	case typeUserText:
		var frame audioFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Text == "" {
			logger.Warn("malformed text frame")
			return
		}
		if err := rt.SendText(frame.Text); err != nil {
			logger.Warn("text forward failed", "error", err)
			return
		}
		if err := sess.RequestTurn(); err != nil {
			logger.Warn("turn request failed", "error", err)
		}
	default:
		sess.HandleClientMessage(data)
	}
}
