package service

import (
	"log/slog"
	"time"

	"github.com/xeonx/timeago"

	"github.com/goatkit/goatchat/internal/metrics"
	"github.com/goatkit/goatchat/internal/models"
)

// ConversationCloser drives the per-session closure state machine:
// NONE -> AWAITING_ASSISTANCE_CHECK -> AWAITING_CLOSE_CONFIRMATION -> CLOSED,
// with an external reset edge back to NONE on any user activity. The tracker
// serializes all operations per session, so concurrent silence checks cannot
// both advance the phase.
type ConversationCloser struct {
	tracker    *ActivityTracker
	thresholds SilenceThresholds
}

// NewConversationCloser creates a closure service over the given tracker.
func NewConversationCloser(tracker *ActivityTracker, thresholds SilenceThresholds) *ConversationCloser {
	return &ConversationCloser{
		tracker:    tracker,
		thresholds: thresholds,
	}
}

// HandleUserSilence evaluates the silence policy for a session and persists
// any phase advance. It returns the action directive due, or nil when
// nothing is due — a valid empty result, never an error. An unknown session
// is created fresh in phase NONE.
func (s *ConversationCloser) HandleUserSilence(sessionID string, elapsed time.Duration) *models.ClosureAction {
	var action *models.ClosureAction

	s.tracker.WithSession(sessionID, func(state *models.ConversationState) {
		nextPhase, a := EvaluateSilence(elapsed, state.ClosurePhase, s.thresholds)
		state.ClosurePhase = nextPhase
		action = a
	})

	if action != nil {
		metrics.RecordClosureAction(action.ActionType)
		slog.Info("closure action emitted",
			"session_id", sessionID,
			"action", action.ActionType,
			"elapsed", elapsed)
	}
	return action
}

// SetFurtherAssistanceContext marks that the last prompt shown to the user
// was the "anything else?" question, so the next inbound message can be read
// as an answer to it.
func (s *ConversationCloser) SetFurtherAssistanceContext(sessionID string) {
	s.tracker.WithSession(sessionID, func(state *models.ConversationState) {
		state.AwaitingAssistanceReply = true
	})
}

// ConsumeFurtherAssistanceContext reports whether the session was awaiting a
// reply to the "anything else?" question and clears the flag.
func (s *ConversationCloser) ConsumeFurtherAssistanceContext(sessionID string) bool {
	awaiting := false
	s.tracker.WithSession(sessionID, func(state *models.ConversationState) {
		awaiting = state.AwaitingAssistanceReply
		state.AwaitingAssistanceReply = false
	})
	return awaiting
}

// ResetUserActivity records user activity and forces the phase back to NONE,
// ending the current silence episode.
func (s *ConversationCloser) ResetUserActivity(sessionID string) {
	s.tracker.ResetActivity(sessionID)
}

// Status returns the diagnostics projection of a session. Unknown sessions
// report phase NONE with Known=false rather than an error.
func (s *ConversationCloser) Status(sessionID string) models.ConversationStatus {
	state, ok := s.tracker.Snapshot(sessionID)
	if !ok {
		return models.ConversationStatus{
			SessionID:    sessionID,
			ClosurePhase: models.PhaseNone,
			Known:        false,
		}
	}

	last := state.LastActivityAt
	return models.ConversationStatus{
		SessionID:               sessionID,
		ClosurePhase:            state.ClosurePhase,
		AwaitingAssistanceReply: state.AwaitingAssistanceReply,
		LastActivityAt:          &last,
		LastActivityAgo:         timeago.English.Format(last),
		Known:                   true,
	}
}
