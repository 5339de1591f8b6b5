package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/goatchat/internal/models"
	"github.com/goatkit/goatchat/internal/service"
)

func TestHandleChatMessage(t *testing.T) {
	router := newTestRouter(t)

	t.Run("returns both sides of the exchange", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/chat/message", gin.H{
			"sessionId": "chat-1",
			"userId":    "user-1",
			"text":      "I have a question about my bill",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var reply service.ChatReply
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
		require.NotNil(t, reply.UserMessage)
		require.NotNil(t, reply.BotMessage)
		assert.Equal(t, models.SenderUser, reply.UserMessage.Sender)
		assert.Equal(t, models.SenderBot, reply.BotMessage.Sender)
		assert.Equal(t, service.IntentBilling, reply.Intent.Intent)
		assert.NotEmpty(t, reply.BotMessage.Text)
		assert.False(t, reply.Farewell)
	})

	t.Run("rejects missing text", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/chat/message", gin.H{
			"sessionId": "chat-2",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "core:invalid_request", errorCode(t, w))
	})

	t.Run("rejects text that sanitizes to nothing", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/chat/message", gin.H{
			"sessionId": "chat-3",
			"text":      "<script>alert(1)</script>",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "chat:empty_message", errorCode(t, w))
	})

	t.Run("message resets the closure phase", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/feedback/silence", gin.H{
			"sessionId":              "chat-4",
			"silenceDurationSeconds": 90,
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/chat/message", gin.H{
			"sessionId": "chat-4",
			"text":      "actually one more thing",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/feedback/status/chat-4", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var status models.ConversationStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, models.PhaseNone, status.ClosurePhase)
	})

	t.Run("negative reply to assistance check is a farewell", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/feedback/silence", gin.H{
			"sessionId":              "chat-5",
			"silenceDurationSeconds": 90,
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/chat/message", gin.H{
			"sessionId": "chat-5",
			"text":      "No thanks",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var reply service.ChatReply
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
		assert.True(t, reply.Farewell)
	})
}

func TestHandleChatHistory(t *testing.T) {
	router := newTestRouter(t)

	for _, text := range []string{"hello", "where is my order?"} {
		w := doJSON(t, router, http.MethodPost, "/api/chat/message", gin.H{
			"sessionId": "hist-1",
			"text":      text,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	t.Run("returns the conversation in order", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/chat/history/hist-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			SessionID string               `json:"sessionId"`
			Messages  []models.ChatMessage `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "hist-1", resp.SessionID)
		require.Len(t, resp.Messages, 4)
		assert.Equal(t, models.SenderUser, resp.Messages[0].Sender)
		assert.Equal(t, "hello", resp.Messages[0].Text)
		assert.Equal(t, models.SenderBot, resp.Messages[1].Sender)
	})

	t.Run("honors the limit", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/chat/history/hist-1?limit=2", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Messages []models.ChatMessage `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Messages, 2)
	})

	t.Run("rejects a negative limit", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/chat/history/hist-1?limit=-1", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "core:validation_failed", errorCode(t, w))
	})

	t.Run("unknown session yields an empty list", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/chat/history/never-seen", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Messages []models.ChatMessage `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Messages)
	})
}
