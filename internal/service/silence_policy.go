package service

import (
	"time"

	"github.com/goatkit/goatchat/internal/models"
)

// SilenceThresholds are the named silence durations driving the wind-down
// dialogue. They come from configuration; see config.ClosureConfig.
type SilenceThresholds struct {
	// FirstPrompt is the silence before the "anything else?" prompt.
	FirstPrompt time.Duration
	// Close is the silence before the close-confirmation prompt.
	Close time.Duration
	// FinalClose is the silence before the conversation is closed.
	FinalClose time.Duration
}

// Prompt texts for each closure action.
const (
	promptCheckAssistance = "Is there anything else I can help you with?"
	promptConfirmClose    = "It looks like you've stepped away. I'll close this conversation shortly unless you need anything else."
	promptClosed          = "This conversation has been closed due to inactivity. Feel free to start a new chat anytime!"
)

// EvaluateSilence decides whether a closure prompt is due. It is a pure
// function of the elapsed silence, the current phase and the thresholds:
// no clock reads, no side effects.
//
// Phases only move forward, one step per evaluation, so a very long silence
// still walks NONE -> AWAITING_ASSISTANCE_CHECK -> AWAITING_CLOSE_CONFIRMATION
// -> CLOSED across successive checks rather than skipping ahead. A nil action
// with an unchanged phase means nothing is due yet.
func EvaluateSilence(elapsed time.Duration, phase models.ClosurePhase, th SilenceThresholds) (models.ClosurePhase, *models.ClosureAction) {
	switch phase {
	case models.PhaseNone:
		if elapsed >= th.FirstPrompt {
			return models.PhaseAwaitingAssistance, &models.ClosureAction{
				ActionType: models.ActionCheckAssistance,
				PromptText: promptCheckAssistance,
				Phase:      models.PhaseAwaitingAssistance,
			}
		}
	case models.PhaseAwaitingAssistance:
		if elapsed >= th.Close {
			return models.PhaseAwaitingCloseConfirm, &models.ClosureAction{
				ActionType: models.ActionConfirmClose,
				PromptText: promptConfirmClose,
				Phase:      models.PhaseAwaitingCloseConfirm,
			}
		}
	case models.PhaseAwaitingCloseConfirm:
		if elapsed >= th.FinalClose {
			return models.PhaseClosed, &models.ClosureAction{
				ActionType: models.ActionCloseConversation,
				PromptText: promptClosed,
				Phase:      models.PhaseClosed,
			}
		}
	case models.PhaseClosed:
		// Terminal until an external activity reset.
	}
	return phase, nil
}
