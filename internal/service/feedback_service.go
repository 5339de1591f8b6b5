package service

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goatkit/goatchat/internal/metrics"
	"github.com/goatkit/goatchat/internal/models"
	"github.com/goatkit/goatchat/internal/repository"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	// ErrDuplicateSubmission means the session already has feedback. The
	// first record wins; resubmission never overwrites.
	ErrDuplicateSubmission = errors.New("feedback already submitted for this session")
	// ErrInvalidRating means the rating is outside the configured bounds.
	ErrInvalidRating = errors.New("rating outside allowed range")
)

// RatingBounds is the configured inclusive rating range.
type RatingBounds struct {
	Min int
	Max int
}

// SubmitFeedbackRequest carries a feedback submission into the service.
type SubmitFeedbackRequest struct {
	SessionID         string
	UserID            string
	Rating            int
	WasHelpful        *bool
	Comment           string
	ConversationTopic string
}

// FeedbackService records one-per-session conversation ratings and serves
// aggregate projections over them.
type FeedbackService struct {
	repo      repository.FeedbackRepository
	bounds    RatingBounds
	sanitizer *bluemonday.Policy

	now func() time.Time
}

// NewFeedbackService creates a feedback service over the given repository.
func NewFeedbackService(repo repository.FeedbackRepository, bounds RatingBounds) *FeedbackService {
	return &FeedbackService{
		repo:      repo,
		bounds:    bounds,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// Submit validates and stores a feedback record. The duplicate check and the
// insert are atomic in the repository; a second submission for the same
// session fails with ErrDuplicateSubmission regardless of payload.
func (s *FeedbackService) Submit(req SubmitFeedbackRequest) (*models.Feedback, error) {
	if req.Rating < s.bounds.Min || req.Rating > s.bounds.Max {
		metrics.RecordFeedback("invalid_rating")
		return nil, fmt.Errorf("%w: got %d, want %d-%d", ErrInvalidRating, req.Rating, s.bounds.Min, s.bounds.Max)
	}

	fb := &models.Feedback{
		SessionID:         req.SessionID,
		UserID:            req.UserID,
		Rating:            req.Rating,
		WasHelpful:        req.WasHelpful,
		Comment:           s.cleanText(req.Comment),
		ConversationTopic: s.cleanText(req.ConversationTopic),
		SubmittedAt:       s.now().UTC(),
	}

	id, err := s.repo.Create(fb)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateFeedback) {
			metrics.RecordFeedback("duplicate")
			return nil, ErrDuplicateSubmission
		}
		metrics.RecordFeedback("error")
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	fb.ID = id

	metrics.RecordFeedback("accepted")
	slog.Info("feedback submitted",
		"session_id", fb.SessionID,
		"rating", fb.Rating,
		"topic", fb.ConversationTopic)

	return fb, nil
}

// ResponseMessage maps a rating to its acknowledgment message. Pure and
// total: every rating falls into exactly one bucket.
func (s *FeedbackService) ResponseMessage(rating int) string {
	switch {
	case rating >= 4:
		return "Thank you so much for the great rating! We're glad we could help."
	case rating == 3:
		return "Thanks for your feedback. We'll keep working to improve."
	default:
		return "We're sorry the experience fell short. A member of our support team can follow up with you if you'd like."
	}
}

// Stats returns aggregate counts and averages over all feedback.
func (s *FeedbackService) Stats() (*models.FeedbackStats, error) {
	return s.repo.Stats()
}

// StatsByTopic returns the aggregate rating for one topic. A topic with no
// feedback yields a zero-count result.
func (s *FeedbackService) StatsByTopic(topic string) (*models.TopicStats, error) {
	return s.repo.TopicStats(topic)
}

// Recent returns feedback submitted within the trailing number of days,
// newest first.
func (s *FeedbackService) Recent(days int) ([]*models.Feedback, error) {
	if days <= 0 {
		days = 7
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	return s.repo.ListSince(since)
}

// UserHistory returns all feedback a user has submitted, newest first.
func (s *FeedbackService) UserHistory(userID string) ([]*models.Feedback, error) {
	return s.repo.ListByUser(userID)
}

// cleanText strips any HTML from user-supplied text and normalizes
// whitespace. Sanitized output is stored, not the raw input.
func (s *FeedbackService) cleanText(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}
