package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yungbote/cementplant-backend/internal/http/response"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
	"github.com/yungbote/cementplant-backend/internal/realtime"
)

// InitialSource builds the first frame a dashboard client receives.
type InitialSource interface {
	InitialMessage(ctx context.Context) (realtime.Message, error)
}

type RealtimeHandler struct {
	log        *logger.Logger
	hub        *realtime.Hub
	initial    InitialSource
	upgrader   websocket.Upgrader
	sendBuffer int
}

// NewRealtimeHandler accepts WebSocket upgrades from origins; an empty list or
// "*" accepts any origin.
func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub, initial InitialSource, origins []string, sendBuffer int) *RealtimeHandler {
	if sendBuffer <= 0 {
		sendBuffer = realtime.DefaultSendBuffer
	}
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		initial: initial,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(origins),
		},
		sendBuffer: sendBuffer,
	}
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := map[string]bool{}
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(allowed) == 0 || allowed[strings.TrimRight(origin, "/")]
	}
}

// GET /ws/plant-data?client_id=...
func (h *RealtimeHandler) PlantData(c *gin.Context) {
	// Build the initial frame before upgrading so a store failure is a plain 503.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	msg, err := h.initial.InitialMessage(ctx)
	cancel()
	if err != nil {
		h.log.Warn("Initial snapshot failed", "error", err)
		response.RespondError(c, http.StatusServiceUnavailable, "snapshot_failed", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	sub := realtime.NewWSSubscriber(conn, h.log, h.sendBuffer)
	if err := realtime.SendTo(sub, msg); err != nil {
		_ = sub.Close()
		return
	}
	sub.Serve(h.hub, realtime.ClientInfo{
		ClientID:     strings.TrimSpace(c.Query("client_id")),
		Subscription: realtime.TopicPlantData,
		RemoteAddr:   c.ClientIP(),
	})
}

// GET /ws/alerts?priority_filter=8
func (h *RealtimeHandler) Alerts(c *gin.Context) {
	minPriority := 0
	if v := strings.TrimSpace(c.Query("priority_filter")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 10 {
			response.RespondError(c, http.StatusBadRequest, "invalid_priority_filter", errInvalidPriority)
			return
		}
		minPriority = n
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	sub := realtime.NewWSSubscriber(conn, h.log, h.sendBuffer)
	welcome := realtime.NewMessage(realtime.TypeWelcome, gin.H{
		"subscription":    realtime.TopicAlerts,
		"priority_filter": minPriority,
	})
	if err := realtime.SendTo(sub, welcome); err != nil {
		_ = sub.Close()
		return
	}
	sub.Serve(h.hub, realtime.ClientInfo{
		ClientID:     strings.TrimSpace(c.Query("client_id")),
		Subscription: realtime.TopicAlerts,
		RemoteAddr:   c.ClientIP(),
		MinPriority:  minPriority,
	})
}

// GET /ws/status
func (h *RealtimeHandler) Status(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"active_connections": h.hub.Count(),
		"connections":        h.hub.Clients(),
		"timestamp":          time.Now().UTC(),
	})
}
