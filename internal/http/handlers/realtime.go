package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adverto/adboard-backend/internal/platform/logger"
	"github.com/adverto/adboard-backend/internal/realtime"
	"github.com/adverto/adboard-backend/internal/requestdata"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*realtime.SSEClient // key: UserID, one stream per user
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /sse/stream
// Each user gets one stream. Opening a second one closes the first so stale
// tabs do not hold subscriptions.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	userID := rd.UserID
	h.log.Info("SSE stream open", "user_id", userID.String())

	h.mu.Lock()
	if existing, ok := h.clients[userID]; ok {
		h.hub.CloseClient(existing)
		delete(h.clients, userID)
	}
	client := h.hub.NewSSEClient(userID)
	h.clients[userID] = client
	h.mu.Unlock()

	// Chat and moderation events are published on the user's own channel.
	h.hub.AddChannel(client, userID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	delete(h.clients, userID)
	h.mu.Unlock()
	h.hub.CloseClient(client)
}
