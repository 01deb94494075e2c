package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the HistoryStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL history store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sender_history (
			sender VARCHAR(255) PRIMARY KEY,
			category VARCHAR(64),
			seen_count INT DEFAULT 0,
			last_seen TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Record notes that a sender's latest message landed in category
func (s *MySQLStore) Record(ctx context.Context, sender string, category core.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sender_history (sender, category, seen_count, last_seen)
		VALUES (?, ?, 1, NOW())
		ON DUPLICATE KEY UPDATE
			category = VALUES(category),
			seen_count = seen_count + 1,
			last_seen = NOW()
	`, sender, category.String())

	if err != nil {
		return fmt.Errorf("failed to record sender history: %w", err)
	}
	return nil
}

// List returns every recorded sender with its last category
func (s *MySQLStore) List(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sender, category FROM sender_history`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sender history: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var sender string
		var category sql.NullString
		if err := rows.Scan(&sender, &category); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		out[sender] = category.String
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}
	return out, nil
}

// Clear drops all recorded history
func (s *MySQLStore) Clear(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sender_history`)
	if err != nil {
		return fmt.Errorf("failed to clear sender history: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		s.logger.Debug("Cleared sender history", zap.Int64("rows", affected))
	}
	return nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
