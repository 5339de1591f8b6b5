package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/goatchat/internal/models"
	"github.com/goatkit/goatchat/internal/repository"
)

func newTestChatService() (*ChatService, *repository.MemoryMessageRepository, *ConversationCloser) {
	messages := repository.NewMemoryMessageRepository()
	closer := newTestCloser()
	svc := NewChatService(messages, NewIntentPredictor(), NewResponder(""), closer)
	return svc, messages, closer
}

func TestChatService_HandleMessage(t *testing.T) {
	svc, messages, _ := newTestChatService()

	reply, err := svc.HandleMessage(InboundMessage{
		SessionID: "abc",
		UserID:    "alice",
		Text:      "where is my order?",
	})
	require.NoError(t, err)

	assert.Equal(t, IntentOrderStatus, reply.Intent.Intent)
	assert.Equal(t, models.SenderUser, reply.UserMessage.Sender)
	assert.Equal(t, models.SenderBot, reply.BotMessage.Sender)
	assert.NotEmpty(t, reply.BotMessage.Text)
	assert.False(t, reply.Farewell)

	// Both sides of the exchange were persisted.
	history, err := messages.ListBySession("abc", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.SenderUser, history[0].Sender)
	assert.Equal(t, IntentOrderStatus, history[0].Intent)
	assert.Equal(t, models.SenderBot, history[1].Sender)
}

func TestChatService_EmptyMessage(t *testing.T) {
	svc, messages, _ := newTestChatService()

	for _, text := range []string{"", "   ", "<script></script>"} {
		_, err := svc.HandleMessage(InboundMessage{SessionID: "abc", Text: text})
		assert.ErrorIs(t, err, ErrEmptyMessage, "text %q", text)
	}

	history, err := messages.ListBySession("abc", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatService_SanitizesText(t *testing.T) {
	svc, messages, _ := newTestChatService()

	_, err := svc.HandleMessage(InboundMessage{
		SessionID: "abc",
		Text:      `help <img src=x onerror=alert(1)> me`,
	})
	require.NoError(t, err)

	history, _ := messages.ListBySession("abc", 0)
	require.NotEmpty(t, history)
	assert.NotContains(t, history[0].Text, "<img")
	assert.Contains(t, history[0].Text, "help")
}

func TestChatService_MessageResetsClosurePhase(t *testing.T) {
	svc, _, closer := newTestChatService()

	closer.HandleUserSilence("abc", 65*time.Second)
	require.Equal(t, models.PhaseAwaitingAssistance, closer.Status("abc").ClosurePhase)

	_, err := svc.HandleMessage(InboundMessage{SessionID: "abc", Text: "still here"})
	require.NoError(t, err)

	assert.Equal(t, models.PhaseNone, closer.Status("abc").ClosurePhase)
}

func TestChatService_FurtherAssistanceNo(t *testing.T) {
	svc, _, closer := newTestChatService()

	closer.SetFurtherAssistanceContext("abc")

	reply, err := svc.HandleMessage(InboundMessage{SessionID: "abc", Text: "No thanks"})
	require.NoError(t, err)
	assert.True(t, reply.Farewell)
	assert.Contains(t, DefaultCatalog().Intents[IntentFarewell], reply.BotMessage.Text)
}

func TestChatService_FurtherAssistanceNewQuestion(t *testing.T) {
	svc, _, closer := newTestChatService()

	closer.SetFurtherAssistanceContext("abc")

	// A substantive reply is treated as a fresh message, not a farewell.
	reply, err := svc.HandleMessage(InboundMessage{SessionID: "abc", Text: "actually, my invoice looks wrong"})
	require.NoError(t, err)
	assert.False(t, reply.Farewell)
	assert.Equal(t, IntentBilling, reply.Intent.Intent)

	// The flag was consumed either way.
	assert.False(t, closer.ConsumeFurtherAssistanceContext("abc"))
}

func TestChatService_GreetingUsesTimeOfDay(t *testing.T) {
	svc, _, _ := newTestChatService()

	reply, err := svc.HandleMessage(InboundMessage{SessionID: "abc", Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, IntentGreeting, reply.Intent.Intent)
	assert.Contains(t, reply.BotMessage.Text, "How can I help you today?")
}
