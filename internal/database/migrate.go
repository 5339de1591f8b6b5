package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the GoatChat schema if it does not exist. The feedback id
// column is the only piece that differs per driver.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range schemaStatements() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func feedbackIDColumn() string {
	switch {
	case IsMySQL():
		return "id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY"
	case IsPostgreSQL():
		return "id BIGSERIAL PRIMARY KEY"
	default:
		return "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

func schemaStatements() []string {
	return []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS feedback (
			%s,
			session_id VARCHAR(255) NOT NULL,
			user_id VARCHAR(255) NOT NULL DEFAULT '',
			rating INTEGER NOT NULL,
			was_helpful BOOLEAN,
			comment TEXT NOT NULL DEFAULT '',
			conversation_topic VARCHAR(255) NOT NULL DEFAULT '',
			submitted_at TIMESTAMP NOT NULL
		)`, feedbackIDColumn()),
		// One feedback record per session, enforced by the database even if
		// the service-level check races.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_feedback_session ON feedback (session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_submitted ON feedback (submitted_at)`,

		`CREATE TABLE IF NOT EXISTS chat_message (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			session_id VARCHAR(255) NOT NULL,
			user_id VARCHAR(255) NOT NULL DEFAULT '',
			sender VARCHAR(16) NOT NULL,
			text TEXT NOT NULL,
			intent VARCHAR(64) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_message_session ON chat_message (session_id, created_at)`,
	}
}
