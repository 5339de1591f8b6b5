// Package repository contains the data access layer. Each store is an
// interface with a SQL implementation and an in-memory implementation used
// by unit tests.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/goatkit/goatchat/internal/database"
	"github.com/goatkit/goatchat/internal/models"
)

// ErrDuplicateFeedback is returned when a session already has a feedback
// record. At most one record per session is allowed; submissions never
// overwrite.
var ErrDuplicateFeedback = errors.New("feedback already exists for session")

// FeedbackRepository defines the interface for feedback persistence.
type FeedbackRepository interface {
	Create(fb *models.Feedback) (int64, error)
	GetBySessionID(sessionID string) (*models.Feedback, error)
	Stats() (*models.FeedbackStats, error)
	TopicStats(topic string) (*models.TopicStats, error)
	ListSince(since time.Time) ([]*models.Feedback, error)
	ListByUser(userID string) ([]*models.Feedback, error)
}

// FeedbackSQLRepository handles database operations for the feedback table.
type FeedbackSQLRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository creates a new SQL-backed feedback repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackSQLRepository {
	return &FeedbackSQLRepository{db: db}
}

// Create inserts a new feedback record. The existence check and the insert
// run in one transaction; the unique index on session_id is the backstop if
// two submissions race past the check on a driver with weaker isolation.
func (r *FeedbackSQLRepository) Create(fb *models.Feedback) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var count int
	checkQuery := database.ConvertPlaceholders(`SELECT COUNT(*) FROM feedback WHERE session_id = ?`)
	if err = tx.QueryRow(checkQuery, fb.SessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to check for existing feedback: %w", err)
	}
	if count > 0 {
		err = ErrDuplicateFeedback
		return 0, err
	}

	insertQuery := database.ConvertPlaceholders(`
		INSERT INTO feedback (session_id, user_id, rating, was_helpful, comment, conversation_topic, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	var id int64
	if database.IsPostgreSQL() {
		// lib/pq does not support LastInsertId
		err = tx.QueryRow(insertQuery+" RETURNING id",
			fb.SessionID, fb.UserID, fb.Rating, fb.WasHelpful, fb.Comment, fb.ConversationTopic, fb.SubmittedAt).Scan(&id)
	} else {
		var result sql.Result
		result, err = tx.Exec(insertQuery,
			fb.SessionID, fb.UserID, fb.Rating, fb.WasHelpful, fb.Comment, fb.ConversationTopic, fb.SubmittedAt)
		if err == nil {
			id, err = result.LastInsertId()
		}
	}
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicateFeedback
			return 0, err
		}
		return 0, fmt.Errorf("failed to insert feedback: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

// GetBySessionID retrieves the feedback record for a session, or nil if the
// session has none.
func (r *FeedbackSQLRepository) GetBySessionID(sessionID string) (*models.Feedback, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, session_id, user_id, rating, was_helpful, comment, conversation_topic, submitted_at
		FROM feedback
		WHERE session_id = ?`)

	var fb models.Feedback
	if err := r.db.Get(&fb, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	return &fb, nil
}

// Stats computes aggregate counts and the average rating over all feedback.
func (r *FeedbackSQLRepository) Stats() (*models.FeedbackStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COALESCE(AVG(rating), 0) AS avg_rating,
			COALESCE(SUM(CASE WHEN was_helpful = true THEN 1 ELSE 0 END), 0) AS helpful,
			COALESCE(SUM(CASE WHEN was_helpful = false THEN 1 ELSE 0 END), 0) AS not_helpful
		FROM feedback`
	if database.IsSQLite() {
		// SQLite stores booleans as 0/1
		query = `
		SELECT
			COUNT(*) AS total,
			COALESCE(AVG(rating), 0) AS avg_rating,
			COALESCE(SUM(CASE WHEN was_helpful = 1 THEN 1 ELSE 0 END), 0) AS helpful,
			COALESCE(SUM(CASE WHEN was_helpful = 0 THEN 1 ELSE 0 END), 0) AS not_helpful
		FROM feedback`
	}

	stats := &models.FeedbackStats{}
	row := r.db.QueryRow(query)
	if err := row.Scan(&stats.TotalCount, &stats.AverageRating, &stats.HelpfulCount, &stats.NotHelpfulCount); err != nil {
		return nil, fmt.Errorf("failed to compute feedback stats: %w", err)
	}
	return stats, nil
}

// TopicStats computes the aggregate rating for one conversation topic. A
// topic with no feedback yields the zero-count result, not an error.
func (r *FeedbackSQLRepository) TopicStats(topic string) (*models.TopicStats, error) {
	query := database.ConvertPlaceholders(`
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM feedback
		WHERE conversation_topic = ?`)

	stats := &models.TopicStats{Topic: topic}
	if err := r.db.QueryRow(query, topic).Scan(&stats.Count, &stats.AverageRating); err != nil {
		return nil, fmt.Errorf("failed to compute topic stats: %w", err)
	}
	return stats, nil
}

// ListSince returns all feedback submitted at or after the given time,
// newest first.
func (r *FeedbackSQLRepository) ListSince(since time.Time) ([]*models.Feedback, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, session_id, user_id, rating, was_helpful, comment, conversation_topic, submitted_at
		FROM feedback
		WHERE submitted_at >= ?
		ORDER BY submitted_at DESC`)

	var records []*models.Feedback
	if err := r.db.Select(&records, query, since); err != nil {
		return nil, fmt.Errorf("failed to list recent feedback: %w", err)
	}
	return records, nil
}

// ListByUser returns all feedback submitted by a user, newest first.
func (r *FeedbackSQLRepository) ListByUser(userID string) ([]*models.Feedback, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, session_id, user_id, rating, was_helpful, comment, conversation_topic, submitted_at
		FROM feedback
		WHERE user_id = ?
		ORDER BY submitted_at DESC`)

	var records []*models.Feedback
	if err := r.db.Select(&records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user feedback: %w", err)
	}
	return records, nil
}

// isUniqueViolation detects unique constraint errors across the supported
// drivers without importing their error types here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite3
		strings.Contains(msg, "Duplicate entry") || // mysql
		strings.Contains(msg, "duplicate key value") // postgres
}
