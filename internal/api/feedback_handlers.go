// Package api contains the gin HTTP handlers for the GoatChat REST surface.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goatkit/goatchat/internal/apierrors"
	"github.com/goatkit/goatchat/internal/models"
	"github.com/goatkit/goatchat/internal/service"
)

// FeedbackHandler serves the /api/feedback endpoints.
type FeedbackHandler struct {
	feedback *service.FeedbackService
	closer   *service.ConversationCloser
}

// NewFeedbackHandler creates the handler over its services.
func NewFeedbackHandler(feedback *service.FeedbackService, closer *service.ConversationCloser) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, closer: closer}
}

type submitFeedbackRequest struct {
	SessionID         string `json:"sessionId" binding:"required"`
	UserID            string `json:"userId"`
	Rating            int    `json:"rating" binding:"required"`
	WasHelpful        *bool  `json:"wasHelpful"`
	Comment           string `json:"comment"`
	ConversationTopic string `json:"conversationTopic"`
}

// HandleSubmit handles POST /api/feedback/submit.
func (h *FeedbackHandler) HandleSubmit(c *gin.Context) {
	var req submitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ErrorWithMessage(c, apierrors.CodeInvalidRequest, err.Error())
		return
	}

	fb, err := h.feedback.Submit(service.SubmitFeedbackRequest{
		SessionID:         req.SessionID,
		UserID:            req.UserID,
		Rating:            req.Rating,
		WasHelpful:        req.WasHelpful,
		Comment:           req.Comment,
		ConversationTopic: req.ConversationTopic,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateSubmission):
			apierrors.Error(c, apierrors.CodeDuplicateSubmission)
		case errors.Is(err, service.ErrInvalidRating):
			apierrors.ErrorWithMessage(c, apierrors.CodeInvalidRating, err.Error())
		default:
			slog.Error("feedback submission failed", "session_id", req.SessionID, "error", err)
			apierrors.Error(c, apierrors.CodeInternalError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     h.feedback.ResponseMessage(fb.Rating),
		"feedbackId": fb.ID,
	})
}

type silenceCheckRequest struct {
	SessionID              string `json:"sessionId" binding:"required"`
	SilenceDurationSeconds int    `json:"silenceDurationSeconds" binding:"min=0"`
}

// HandleSilenceCheck handles POST /api/feedback/silence. When no closure
// action is due the response is an empty 204; that is the normal case, not
// an error.
func (h *FeedbackHandler) HandleSilenceCheck(c *gin.Context) {
	var req silenceCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ErrorWithMessage(c, apierrors.CodeInvalidRequest, err.Error())
		return
	}

	elapsed := time.Duration(req.SilenceDurationSeconds) * time.Second
	action := h.closer.HandleUserSilence(req.SessionID, elapsed)
	if action == nil {
		c.Status(http.StatusNoContent)
		return
	}

	// Remember that the next user reply answers the "anything else?"
	// question rather than opening a new topic.
	if action.ActionType == models.ActionCheckAssistance {
		h.closer.SetFurtherAssistanceContext(req.SessionID)
	}

	c.JSON(http.StatusOK, action)
}

// HandleResetActivity handles POST /api/feedback/activity/:sessionID.
func (h *FeedbackHandler) HandleResetActivity(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		apierrors.Error(c, apierrors.CodeInvalidID)
		return
	}

	h.closer.ResetUserActivity(sessionID)
	c.Status(http.StatusOK)
}

// HandleStats handles GET /api/feedback/stats. With ?topic= it returns the
// per-topic aggregate instead; a topic with no data yields a zero-count
// result.
func (h *FeedbackHandler) HandleStats(c *gin.Context) {
	if topic := c.Query("topic"); topic != "" {
		stats, err := h.feedback.StatsByTopic(topic)
		if err != nil {
			slog.Error("topic stats query failed", "topic", topic, "error", err)
			apierrors.Error(c, apierrors.CodeInternalError)
			return
		}
		c.JSON(http.StatusOK, stats)
		return
	}

	stats, err := h.feedback.Stats()
	if err != nil {
		slog.Error("feedback stats query failed", "error", err)
		apierrors.Error(c, apierrors.CodeInternalError)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HandleRecent handles GET /api/feedback/recent?days=N (default 7).
func (h *FeedbackHandler) HandleRecent(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			apierrors.ErrorWithMessage(c, apierrors.CodeValidationFailed, "days must be a positive integer")
			return
		}
		days = parsed
	}

	records, err := h.feedback.Recent(days)
	if err != nil {
		slog.Error("recent feedback query failed", "error", err)
		apierrors.Error(c, apierrors.CodeInternalError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "feedback": records})
}

// HandleUserHistory handles GET /api/feedback/user/:userID.
func (h *FeedbackHandler) HandleUserHistory(c *gin.Context) {
	userID := c.Param("userID")
	if userID == "" {
		apierrors.Error(c, apierrors.CodeInvalidID)
		return
	}

	records, err := h.feedback.UserHistory(userID)
	if err != nil {
		slog.Error("user feedback query failed", "user_id", userID, "error", err)
		apierrors.Error(c, apierrors.CodeInternalError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "feedback": records})
}

// HandleStatus handles GET /api/feedback/status/:sessionID, the read-only
// diagnostics projection of the closure state machine.
func (h *FeedbackHandler) HandleStatus(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		apierrors.Error(c, apierrors.CodeInvalidID)
		return
	}

	c.JSON(http.StatusOK, h.closer.Status(sessionID))
}
