package repository

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/goatkit/goatchat/internal/database"
	"github.com/goatkit/goatchat/internal/models"
)

// MessageRepository defines the interface for chat message persistence.
type MessageRepository interface {
	Create(msg *models.ChatMessage) error
	ListBySession(sessionID string, limit int) ([]*models.ChatMessage, error)
}

// MessageSQLRepository handles database operations for the chat_message
// table.
type MessageSQLRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new SQL-backed message repository.
func NewMessageRepository(db *sqlx.DB) *MessageSQLRepository {
	return &MessageSQLRepository{db: db}
}

// Create inserts a chat message.
func (r *MessageSQLRepository) Create(msg *models.ChatMessage) error {
	query := database.ConvertPlaceholders(`
		INSERT INTO chat_message (id, session_id, user_id, sender, text, intent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	if _, err := r.db.Exec(query,
		msg.ID, msg.SessionID, msg.UserID, msg.Sender, msg.Text, msg.Intent, msg.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListBySession returns the messages of a conversation in chronological
// order. A limit of 0 means no limit.
func (r *MessageSQLRepository) ListBySession(sessionID string, limit int) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, session_id, user_id, sender, text, intent, created_at
		FROM chat_message
		WHERE session_id = ?
		ORDER BY created_at ASC`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var messages []*models.ChatMessage
	if err := r.db.Select(&messages, database.ConvertPlaceholders(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}

// MemoryMessageRepository is an in-memory MessageRepository for tests.
type MemoryMessageRepository struct {
	mu       sync.RWMutex
	messages []*models.ChatMessage
}

// NewMemoryMessageRepository creates an empty in-memory repository.
func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{}
}

// Create stores a chat message.
func (r *MemoryMessageRepository) Create(msg *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *msg
	r.messages = append(r.messages, &copied)
	return nil
}

// ListBySession returns a session's messages in chronological order.
func (r *MemoryMessageRepository) ListBySession(sessionID string, limit int) ([]*models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.ChatMessage
	for _, msg := range r.messages {
		if msg.SessionID == sessionID {
			copied := *msg
			result = append(result, &copied)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
