package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/goatchat/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestMemoryFeedbackRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewMemoryFeedbackRepository()

		id, err := repo.Create(&models.Feedback{
			SessionID:   "session-1",
			UserID:      "user-1",
			Rating:      4,
			WasHelpful:  boolPtr(true),
			Comment:     "quick and accurate",
			SubmittedAt: time.Now(),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		stored, err := repo.GetBySessionID("session-1")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, 4, stored.Rating)
		assert.Equal(t, "user-1", stored.UserID)
	})

	t.Run("Create_Duplicate", func(t *testing.T) {
		repo := NewMemoryFeedbackRepository()

		_, err := repo.Create(&models.Feedback{SessionID: "dup", Rating: 5, SubmittedAt: time.Now()})
		require.NoError(t, err)

		// Second submission fails even with a different payload
		_, err = repo.Create(&models.Feedback{SessionID: "dup", Rating: 1, SubmittedAt: time.Now()})
		assert.ErrorIs(t, err, ErrDuplicateFeedback)
	})

	t.Run("GetBySessionID_Absent", func(t *testing.T) {
		repo := NewMemoryFeedbackRepository()

		fb, err := repo.GetBySessionID("nope")
		require.NoError(t, err)
		assert.Nil(t, fb)
	})

	t.Run("Stats", func(t *testing.T) {
		repo := NewMemoryFeedbackRepository()

		repo.Create(&models.Feedback{SessionID: "a", Rating: 5, WasHelpful: boolPtr(true), SubmittedAt: time.Now()})
		repo.Create(&models.Feedback{SessionID: "b", Rating: 3, WasHelpful: boolPtr(false), SubmittedAt: time.Now()})
		repo.Create(&models.Feedback{SessionID: "c", Rating: 4, SubmittedAt: time.Now()})

		stats, err := repo.Stats()
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalCount)
		assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
		assert.Equal(t, 1, stats.HelpfulCount)
		assert.Equal(t, 1, stats.NotHelpfulCount)
	})

	t.Run("TopicStats", func(t *testing.T) {
		repo := NewMemoryFeedbackRepository()

		repo.Create(&models.Feedback{SessionID: "a", Rating: 5, ConversationTopic: "billing", SubmittedAt: time.Now()})
		repo.Create(&models.Feedback{SessionID: "b", Rating: 3, ConversationTopic: "billing", SubmittedAt: time.Now()})
		repo.Create(&models.Feedback{SessionID: "c", Rating: 1, ConversationTopic: "shipping", SubmittedAt: time.Now()})

		stats, err := repo.TopicStats("billing")
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Count)
		assert.InDelta(t, 4.0, stats.AverageRating, 0.001)

		// Unknown topic yields the zero-count result, not an error
		empty, err := repo.TopicStats("refunds")
		require.NoError(t, err)
		assert.Equal(t, 0, empty.Count)
		assert.Zero(t, empty.AverageRating)
	})

	t.Run("ListSince", func(t *testing.T) {
		repo := NewMemoryFeedbackRepository()
		now := time.Now()

		repo.Create(&models.Feedback{SessionID: "old", Rating: 2, SubmittedAt: now.AddDate(0, 0, -10)})
		repo.Create(&models.Feedback{SessionID: "mid", Rating: 3, SubmittedAt: now.AddDate(0, 0, -3)})
		repo.Create(&models.Feedback{SessionID: "new", Rating: 5, SubmittedAt: now})

		records, err := repo.ListSince(now.AddDate(0, 0, -7))
		require.NoError(t, err)
		require.Len(t, records, 2)

		// Newest first
		assert.Equal(t, "new", records[0].SessionID)
		assert.Equal(t, "mid", records[1].SessionID)
	})

	t.Run("ListByUser", func(t *testing.T) {
		repo := NewMemoryFeedbackRepository()
		now := time.Now()

		repo.Create(&models.Feedback{SessionID: "s1", UserID: "alice", Rating: 4, SubmittedAt: now.Add(-time.Hour)})
		repo.Create(&models.Feedback{SessionID: "s2", UserID: "alice", Rating: 5, SubmittedAt: now})
		repo.Create(&models.Feedback{SessionID: "s3", UserID: "bob", Rating: 1, SubmittedAt: now})

		records, err := repo.ListByUser("alice")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "s2", records[0].SessionID)
		assert.Equal(t, "s1", records[1].SessionID)
	})
}
