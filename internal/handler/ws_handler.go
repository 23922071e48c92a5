package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/primeivy/portal-backend/internal/middleware"
	"github.com/primeivy/portal-backend/internal/model"
	"github.com/primeivy/portal-backend/internal/service"
	ws "github.com/primeivy/portal-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams exam session state over WebSocket.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/exam/stream
// Pushes a 1 Hz countdown/phase tick and accepts answer, flag, and
// navigation actions over the same connection.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	username := claims.Username

	if _, err := h.sessionService.View(username); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no exam attempt in progress"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("username", username).Logger()
	wsLog.Info().Msg("Student connected")

	// The ticker goroutine and the read loop both write to the conn;
	// gorilla allows one concurrent writer only.
	var writeMu sync.Mutex
	write := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return ws.WriteTyped(conn, v)
	}

	done := make(chan struct{})
	defer close(done)

	go h.tickLoop(username, write, done, wsLog)

	for {
		conn.SetReadDeadline(time.Now().Add(ws.ReadWait))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			_ = writeErr(write, "invalid JSON payload")
			continue
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			h.handleAnswer(username, raw, write, wsLog)
		case ws.ActionFlag:
			h.handleFlag(username, raw, write)
		case ws.ActionNavigate:
			h.handleNavigate(username, raw, write)
		case ws.ActionPing:
			_ = write(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			_ = writeErr(write, "unknown action: "+string(envelope.Action))
		}
	}
}

// tickLoop pushes the session countdown once per second until the
// connection goes away.
func (h *WSHandler) tickLoop(username string, write func(interface{}) error, done <-chan struct{}, wsLog zerolog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			view, err := h.sessionService.View(username)
			if err != nil {
				return
			}

			statuses := make([]string, len(view.Statuses))
			for i, st := range view.Statuses {
				statuses[i] = string(st)
			}

			if err := write(ws.TickResponse{
				Event:            ws.EventTick,
				Phase:            string(view.Phase),
				Module:           int(view.Module),
				QuestionIndex:    view.QuestionIndex,
				RemainingSeconds: view.RemainingSeconds,
				Statuses:         statuses,
			}); err != nil {
				wsLog.Debug().Err(err).Msg("tick write failed")
				return
			}
		}
	}
}

// handleAnswer saves an answer for the current module.
func (h *WSHandler) handleAnswer(username string, raw []byte, write func(interface{}) error, wsLog zerolog.Logger) {
	var req ws.AnswerRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		_ = writeErr(write, "invalid answer payload")
		return
	}

	view, err := h.sessionService.View(username)
	if err != nil {
		_ = writeErr(write, "no exam attempt in progress")
		return
	}

	qtype := model.QuestionType(strings.ToUpper(req.Type))
	if qtype != model.QuestionTypeMCQ && qtype != model.QuestionTypeSPR {
		qtype = model.QuestionTypeMCQ
	}

	if _, err := h.sessionService.SubmitResponse(username, view.Module, req.Index, qtype, req.Value); err != nil {
		wsLog.Debug().Err(err).Int("index", req.Index).Msg("answer rejected")
		_ = writeErr(write, "save failed")
		return
	}

	_ = write(ws.SuccessResponse{Event: ws.EventSuccess, Status: "saved"})
}

// handleFlag toggles the review flag on a question of the current module.
func (h *WSHandler) handleFlag(username string, raw []byte, write func(interface{}) error) {
	var req ws.FlagRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		_ = writeErr(write, "invalid flag payload")
		return
	}

	if _, err := h.sessionService.ToggleFlag(username, req.Index); err != nil {
		_ = writeErr(write, "flag failed")
		return
	}

	_ = write(ws.SuccessResponse{Event: ws.EventSuccess, Status: "flagged"})
}

// handleNavigate jumps to a question of the current module.
func (h *WSHandler) handleNavigate(username string, raw []byte, write func(interface{}) error) {
	var req ws.NavigateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		_ = writeErr(write, "invalid navigate payload")
		return
	}

	if _, err := h.sessionService.NavigateTo(username, req.Index); err != nil {
		_ = writeErr(write, "navigate failed")
		return
	}

	_ = write(ws.SuccessResponse{Event: ws.EventSuccess, Status: "moved"})
}

func writeErr(write func(interface{}) error, msg string) error {
	return write(ws.ErrorResponse{Event: ws.EventError, Error: msg})
}
