package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/astraid/intervox-backend/internal/config"
	"github.com/astraid/intervox-backend/internal/service"
	ws "github.com/astraid/intervox-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
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

// WSHandler handles WebSocket interview streaming.
type WSHandler struct {
	rdb              *redis.Client
	interviewService *service.InterviewService
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, interviewService *service.InterviewService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:              rdb,
		interviewService: interviewService,
		log:              log.With().Str("component", "ws_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// InterviewStream godoc
// WS /ws/v1/interviews/:interview_id/stream
// Upgrades to WebSocket for live state snapshots and answer streaming.
// Every state change pushes the full session snapshot, so a client can
// reconnect at any point and resync from the first frame.
func (h *WSHandler) InterviewStream(c *gin.Context) {
	interviewID, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interview ID"})
		return
	}

	// Validate the session exists before upgrading.
	if _, err := h.interviewService.GetState(c.Request.Context(), interviewID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "interview not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("interview_id", interviewID.String()).
		Logger()
	wsLog.Info().Msg("Client connected")

	// Writes come from both the read loop and the pub/sub goroutine.
	var writeMu sync.Mutex
	writeTyped := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return ws.WriteTyped(conn, v)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First frame is always a snapshot.
	if err := h.pushSnapshot(ctx, writeTyped, interviewID); err != nil {
		wsLog.Error().Err(err).Msg("Initial snapshot failed")
		return
	}

	sub := h.rdb.Subscribe(ctx, config.CacheKey.InterviewEventsChannel(interviewID.String()))
	defer sub.Close()

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				if err := h.pushSnapshot(ctx, writeTyped, interviewID); err != nil {
					wsLog.Debug().Err(err).Msg("Snapshot push failed")
					return
				}
			}
		}
	}()

	for {
		raw, err := ws.ReadRaw(conn)
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
			writeTyped(ws.ErrorResponse{Event: ws.EventError, Error: "invalid message"})
			continue
		}

		switch envelope.Action {
		case ws.ActionDraft:
			h.handleDraft(ctx, writeTyped, wsLog, interviewID, raw)
		case ws.ActionSubmit:
			h.handleSubmit(ctx, writeTyped, wsLog, interviewID, raw)
		case ws.ActionPing:
			writeTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			writeTyped(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(envelope.Action)})
		}
	}
}

func (h *WSHandler) pushSnapshot(ctx context.Context, write func(interface{}) error, interviewID uuid.UUID) error {
	iv, err := h.interviewService.GetState(ctx, interviewID)
	if err != nil {
		return err
	}
	return write(ws.StateResponse{Event: ws.EventState, Interview: iv})
}

func (h *WSHandler) handleDraft(ctx context.Context, write func(interface{}) error, wsLog zerolog.Logger, interviewID uuid.UUID, raw []byte) {
	var req ws.DraftRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		write(ws.ErrorResponse{Event: ws.EventError, Error: "invalid draft payload"})
		return
	}

	if err := h.interviewService.UpdateDraftAnswer(ctx, interviewID, req.Answer); err != nil {
		wsLog.Error().Err(err).Msg("Draft update failed")
		write(ws.ErrorResponse{Event: ws.EventError, Error: "draft update failed"})
		return
	}
	write(ws.AckResponse{Event: ws.EventAck, Action: ws.ActionDraft})
}

func (h *WSHandler) handleSubmit(ctx context.Context, write func(interface{}) error, wsLog zerolog.Logger, interviewID uuid.UUID, raw []byte) {
	var req ws.SubmitRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		write(ws.ErrorResponse{Event: ws.EventError, Error: "invalid submit payload"})
		return
	}

	if err := h.interviewService.SubmitAnswer(ctx, interviewID, req.Answer); err != nil {
		wsLog.Error().Err(err).Msg("Submit failed")
		write(ws.ErrorResponse{Event: ws.EventError, Error: "submit failed"})
		return
	}
	write(ws.AckResponse{Event: ws.EventAck, Action: ws.ActionSubmit})
}
