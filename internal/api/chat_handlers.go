package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/goatkit/goatchat/internal/apierrors"
	"github.com/goatkit/goatchat/internal/service"
)

// ChatHandler serves the /api/chat endpoints.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates the handler over the chat service.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatMessageRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	UserID    string `json:"userId"`
	Text      string `json:"text" binding:"required"`
}

// HandleMessage handles POST /api/chat/message.
func (h *ChatHandler) HandleMessage(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ErrorWithMessage(c, apierrors.CodeInvalidRequest, err.Error())
		return
	}

	reply, err := h.chat.HandleMessage(service.InboundMessage{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Text:      req.Text,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			apierrors.Error(c, apierrors.CodeEmptyMessage)
			return
		}
		slog.Error("chat message failed", "session_id", req.SessionID, "error", err)
		apierrors.Error(c, apierrors.CodeInternalError)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// HandleHistory handles GET /api/chat/history/:sessionID?limit=N.
func (h *ChatHandler) HandleHistory(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		apierrors.Error(c, apierrors.CodeInvalidID)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			apierrors.ErrorWithMessage(c, apierrors.CodeValidationFailed, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	messages, err := h.chat.History(sessionID, limit)
	if err != nil {
		slog.Error("chat history query failed", "session_id", sessionID, "error", err)
		apierrors.Error(c, apierrors.CodeInternalError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "messages": messages})
}
