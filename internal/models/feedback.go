package models

import "time"

// Feedback represents a one-per-session rating submitted at the end of a
// conversation. Records are immutable once stored.
type Feedback struct {
	ID                int64     `json:"id" db:"id"`
	SessionID         string    `json:"sessionId" db:"session_id"`
	UserID            string    `json:"userId,omitempty" db:"user_id"`
	Rating            int       `json:"rating" db:"rating"`
	WasHelpful        *bool     `json:"wasHelpful,omitempty" db:"was_helpful"`
	Comment           string    `json:"comment,omitempty" db:"comment"`
	ConversationTopic string    `json:"conversationTopic,omitempty" db:"conversation_topic"`
	SubmittedAt       time.Time `json:"submittedAt" db:"submitted_at"`
}

// FeedbackStats is an aggregate projection over all stored feedback.
type FeedbackStats struct {
	TotalCount      int     `json:"totalCount"`
	AverageRating   float64 `json:"averageRating"`
	HelpfulCount    int     `json:"helpfulCount"`
	NotHelpfulCount int     `json:"notHelpfulCount"`
}

// TopicStats is the aggregate rating for a single conversation topic.
// A topic with no feedback yields the zero value, not an error.
type TopicStats struct {
	Topic         string  `json:"topic"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
}
