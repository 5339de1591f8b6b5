package models

import "time"

// ClosurePhase tracks how far the silence-driven wind-down dialogue has
// progressed for a session. Transitions only move forward within one silence
// episode; any user activity resets the phase to PhaseNone.
type ClosurePhase string

const (
	PhaseNone                 ClosurePhase = "NONE"
	PhaseAwaitingAssistance   ClosurePhase = "AWAITING_ASSISTANCE_CHECK"
	PhaseAwaitingCloseConfirm ClosurePhase = "AWAITING_CLOSE_CONFIRMATION"
	PhaseClosed               ClosurePhase = "CLOSED"
)

// Closure action types emitted to the client when a silence check is due.
const (
	ActionCheckAssistance   = "CHECK_ASSISTANCE"
	ActionConfirmClose      = "CONFIRM_CLOSE"
	ActionCloseConversation = "CLOSE_CONVERSATION"
)

// ClosureAction is the directive returned by a silence check. A nil
// *ClosureAction means no action is due; that is a valid result, not an
// error.
type ClosureAction struct {
	ActionType string       `json:"actionType"`
	PromptText string       `json:"promptText"`
	Phase      ClosurePhase `json:"phase"`
}

// ConversationState is the per-session record the closure workflow operates
// on. The awaiting-assistance flag lives in the same record as the phase so
// the two cannot drift apart; all mutation goes through the tracker's
// per-session lock.
type ConversationState struct {
	SessionID               string       `json:"sessionId"`
	LastActivityAt          time.Time    `json:"lastActivityAt"`
	ClosurePhase            ClosurePhase `json:"closurePhase"`
	AwaitingAssistanceReply bool         `json:"awaitingAssistanceReply"`
}

// ConversationStatus is the read-only diagnostics projection of a session.
type ConversationStatus struct {
	SessionID               string       `json:"sessionId"`
	ClosurePhase            ClosurePhase `json:"closurePhase"`
	AwaitingAssistanceReply bool         `json:"awaitingAssistanceReply"`
	LastActivityAt          *time.Time   `json:"lastActivityAt,omitempty"`
	LastActivityAgo         string       `json:"lastActivityAgo,omitempty"`
	Known                   bool         `json:"known"`
}
