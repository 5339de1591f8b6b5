package models

import "time"

// Message sender constants.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatMessage is a single persisted message within a conversation.
type ChatMessage struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"sessionId" db:"session_id"`
	UserID    string    `json:"userId,omitempty" db:"user_id"`
	Sender    string    `json:"sender" db:"sender"`
	Text      string    `json:"text" db:"text"`
	Intent    string    `json:"intent,omitempty" db:"intent"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// IntentPrediction is the result of the rule-based intent lookup. Confidence
// is a heuristic in [0,1]; there is no trained model behind it.
type IntentPrediction struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}
