package service

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goatkit/goatchat/internal/metrics"
	"github.com/goatkit/goatchat/internal/models"
	"github.com/goatkit/goatchat/internal/repository"
)

// ErrEmptyMessage means the inbound message had no text after sanitization.
var ErrEmptyMessage = errors.New("message text is empty")

// InboundMessage is a user message entering the chat pipeline.
type InboundMessage struct {
	SessionID string
	UserID    string
	Text      string
}

// ChatReply is the outcome of handling one inbound message.
type ChatReply struct {
	UserMessage *models.ChatMessage     `json:"userMessage"`
	BotMessage  *models.ChatMessage     `json:"botMessage"`
	Intent      models.IntentPrediction `json:"intent"`
	// Farewell is set when the user answered the "anything else?" prompt
	// with no; the client can offer the feedback form.
	Farewell bool `json:"farewell"`
}

// ChatService runs the message pipeline: sanitize, reset activity, interpret
// the further-assistance context, predict the intent, persist both sides of
// the exchange and pick the bot's reply.
type ChatService struct {
	messages  repository.MessageRepository
	intents   *IntentPredictor
	responder *Responder
	closer    *ConversationCloser
	sanitizer *bluemonday.Policy

	now func() time.Time
}

// NewChatService wires the chat pipeline together.
func NewChatService(messages repository.MessageRepository, intents *IntentPredictor, responder *Responder, closer *ConversationCloser) *ChatService {
	return &ChatService{
		messages:  messages,
		intents:   intents,
		responder: responder,
		closer:    closer,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// negativeReplies are answers to "anything else?" that end the conversation.
var negativeReplies = map[string]bool{
	"no":           true,
	"nope":         true,
	"no thanks":    true,
	"no thank you": true,
	"nothing":      true,
	"nothing else": true,
	"that's all":   true,
	"thats all":    true,
	"i'm good":     true,
	"im good":      true,
	"all good":     true,
}

// HandleMessage processes one user message and returns the bot's reply.
// Any inbound message counts as activity and resets the closure phase.
func (s *ChatService) HandleMessage(in InboundMessage) (*ChatReply, error) {
	text := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(in.Text)))
	if text == "" {
		return nil, ErrEmptyMessage
	}

	// The user spoke: the silence episode is over. Consume the
	// further-assistance flag before resetting so this message can still be
	// read as an answer to the "anything else?" question.
	answeringAssistanceCheck := s.closer.ConsumeFurtherAssistanceContext(in.SessionID)
	s.closer.ResetUserActivity(in.SessionID)

	prediction := s.intents.Predict(text)
	now := s.now().UTC()

	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: in.SessionID,
		UserID:    in.UserID,
		Sender:    models.SenderUser,
		Text:      text,
		Intent:    prediction.Intent,
		CreatedAt: now,
	}
	if err := s.messages.Create(userMsg); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}
	metrics.RecordMessage(models.SenderUser)

	farewell := answeringAssistanceCheck && s.isNegative(text, prediction)
	replyText := s.replyTextFor(prediction, farewell, now)

	botMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: in.SessionID,
		Sender:    models.SenderBot,
		Text:      replyText,
		CreatedAt: now,
	}
	if err := s.messages.Create(botMsg); err != nil {
		return nil, fmt.Errorf("failed to persist bot message: %w", err)
	}
	metrics.RecordMessage(models.SenderBot)

	slog.Debug("message handled",
		"session_id", in.SessionID,
		"intent", prediction.Intent,
		"farewell", farewell)

	return &ChatReply{
		UserMessage: userMsg,
		BotMessage:  botMsg,
		Intent:      prediction,
		Farewell:    farewell,
	}, nil
}

// History returns the messages of a conversation in chronological order.
func (s *ChatService) History(sessionID string, limit int) ([]*models.ChatMessage, error) {
	return s.messages.ListBySession(sessionID, limit)
}

func (s *ChatService) isNegative(text string, prediction models.IntentPrediction) bool {
	normalized := strings.ToLower(strings.TrimRight(text, ".!"))
	return negativeReplies[normalized] || prediction.Intent == IntentFarewell
}

func (s *ChatService) replyTextFor(prediction models.IntentPrediction, farewell bool, now time.Time) string {
	if farewell {
		return s.responder.ResponseFor(IntentFarewell)
	}
	if prediction.Intent == IntentGreeting {
		return s.responder.Greeting(now)
	}
	return s.responder.ResponseFor(prediction.Intent)
}
