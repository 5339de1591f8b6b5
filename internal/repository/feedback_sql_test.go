package repository

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/goatchat/internal/database"
	"github.com/goatkit/goatchat/internal/models"
)

// newTestDB opens an in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestFeedbackSQLRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeedbackRepository(db)

	id, err := repo.Create(&models.Feedback{
		SessionID:         "abc",
		UserID:            "alice",
		Rating:            5,
		WasHelpful:        boolPtr(true),
		Comment:           "solved my problem",
		ConversationTopic: "billing",
		SubmittedAt:       time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	fb, err := repo.GetBySessionID("abc")
	require.NoError(t, err)
	require.NotNil(t, fb)
	assert.Equal(t, 5, fb.Rating)
	assert.Equal(t, "billing", fb.ConversationTopic)
	require.NotNil(t, fb.WasHelpful)
	assert.True(t, *fb.WasHelpful)
}

func TestFeedbackSQLRepository_Duplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeedbackRepository(db)

	_, err := repo.Create(&models.Feedback{SessionID: "abc", Rating: 4, SubmittedAt: time.Now().UTC()})
	require.NoError(t, err)

	_, err = repo.Create(&models.Feedback{SessionID: "abc", Rating: 1, SubmittedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, ErrDuplicateFeedback)
}

func TestFeedbackSQLRepository_StatsAndLists(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeedbackRepository(db)
	now := time.Now().UTC()

	seed := []*models.Feedback{
		{SessionID: "s1", UserID: "alice", Rating: 5, WasHelpful: boolPtr(true), ConversationTopic: "billing", SubmittedAt: now.AddDate(0, 0, -1)},
		{SessionID: "s2", UserID: "alice", Rating: 3, WasHelpful: boolPtr(false), ConversationTopic: "billing", SubmittedAt: now},
		{SessionID: "s3", UserID: "bob", Rating: 4, ConversationTopic: "shipping", SubmittedAt: now.AddDate(0, 0, -10)},
	}
	for _, fb := range seed {
		_, err := repo.Create(fb)
		require.NoError(t, err)
	}

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCount)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
	assert.Equal(t, 1, stats.HelpfulCount)
	assert.Equal(t, 1, stats.NotHelpfulCount)

	topic, err := repo.TopicStats("billing")
	require.NoError(t, err)
	assert.Equal(t, 2, topic.Count)
	assert.InDelta(t, 4.0, topic.AverageRating, 0.001)

	recent, err := repo.ListSince(now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "s2", recent[0].SessionID)

	byUser, err := repo.ListByUser("alice")
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, "s2", byUser[0].SessionID)
}

func TestMessageSQLRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	now := time.Now().UTC()

	msgs := []*models.ChatMessage{
		{ID: "m1", SessionID: "abc", Sender: models.SenderUser, Text: "hello", CreatedAt: now},
		{ID: "m2", SessionID: "abc", Sender: models.SenderBot, Text: "hi, how can I help?", CreatedAt: now.Add(time.Second)},
		{ID: "m3", SessionID: "other", Sender: models.SenderUser, Text: "unrelated", CreatedAt: now},
	}
	for _, m := range msgs {
		require.NoError(t, repo.Create(m))
	}

	list, err := repo.ListBySession("abc", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "m1", list[0].ID)
	assert.Equal(t, "m2", list[1].ID)

	limited, err := repo.ListBySession("abc", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
