package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/goatkit/goatchat/internal/models"
)

// MemoryFeedbackRepository is an in-memory FeedbackRepository used by unit
// tests and by development runs without a database.
type MemoryFeedbackRepository struct {
	mu      sync.RWMutex
	nextID  int64
	records map[string]*models.Feedback // keyed by session ID
}

// NewMemoryFeedbackRepository creates an empty in-memory repository.
func NewMemoryFeedbackRepository() *MemoryFeedbackRepository {
	return &MemoryFeedbackRepository{
		nextID:  1,
		records: make(map[string]*models.Feedback),
	}
}

// Create stores a feedback record, rejecting a second record for the same
// session. The check and insert happen under one lock.
func (r *MemoryFeedbackRepository) Create(fb *models.Feedback) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[fb.SessionID]; exists {
		return 0, ErrDuplicateFeedback
	}

	stored := *fb
	stored.ID = r.nextID
	r.nextID++
	r.records[fb.SessionID] = &stored

	return stored.ID, nil
}

// GetBySessionID returns the record for a session, or nil if absent.
func (r *MemoryFeedbackRepository) GetBySessionID(sessionID string) (*models.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fb, ok := r.records[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *fb
	return &copied, nil
}

// Stats computes aggregates over all stored records.
func (r *MemoryFeedbackRepository) Stats() (*models.FeedbackStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.FeedbackStats{}
	sum := 0
	for _, fb := range r.records {
		stats.TotalCount++
		sum += fb.Rating
		if fb.WasHelpful != nil {
			if *fb.WasHelpful {
				stats.HelpfulCount++
			} else {
				stats.NotHelpfulCount++
			}
		}
	}
	if stats.TotalCount > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalCount)
	}
	return stats, nil
}

// TopicStats computes the aggregate rating for one topic.
func (r *MemoryFeedbackRepository) TopicStats(topic string) (*models.TopicStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.TopicStats{Topic: topic}
	sum := 0
	for _, fb := range r.records {
		if fb.ConversationTopic == topic {
			stats.Count++
			sum += fb.Rating
		}
	}
	if stats.Count > 0 {
		stats.AverageRating = float64(sum) / float64(stats.Count)
	}
	return stats, nil
}

// ListSince returns records submitted at or after the given time, newest
// first.
func (r *MemoryFeedbackRepository) ListSince(since time.Time) ([]*models.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*models.Feedback
	for _, fb := range r.records {
		if !fb.SubmittedAt.Before(since) {
			copied := *fb
			records = append(records, &copied)
		}
	}
	sortNewestFirst(records)
	return records, nil
}

// ListByUser returns records for a user, newest first.
func (r *MemoryFeedbackRepository) ListByUser(userID string) ([]*models.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*models.Feedback
	for _, fb := range r.records {
		if fb.UserID == userID {
			copied := *fb
			records = append(records, &copied)
		}
	}
	sortNewestFirst(records)
	return records, nil
}

func sortNewestFirst(records []*models.Feedback) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].SubmittedAt.After(records[j].SubmittedAt)
	})
}
