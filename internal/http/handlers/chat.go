package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adverto/adboard-backend/internal/http/response"
	"github.com/adverto/adboard-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// POST /conversations
func (ch *ChatHandler) StartConversation(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	var req struct {
		AdID uuid.UUID `json:"ad_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	conv, err := ch.chatService.StartConversation(c.Request.Context(), rd.UserID, req.AdID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversation": conv})
}

// GET /conversations
func (ch *ChatHandler) ListConversations(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	views, err := ch.chatService.ListConversations(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": views})
}

// POST /conversations/:id/messages
func (ch *ChatHandler) SendMessage(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	conversationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	msg, err := ch.chatService.SendMessage(c.Request.Context(), rd.UserID, conversationID, req.Body)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": msg})
}

// GET /conversations/:id/messages
func (ch *ChatHandler) ListMessages(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	conversationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	msgs, err := ch.chatService.ListMessages(c.Request.Context(), rd.UserID, conversationID,
		queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}

// POST /conversations/:id/read
func (ch *ChatHandler) MarkRead(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	conversationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ch.chatService.MarkRead(c.Request.Context(), rd.UserID, conversationID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
