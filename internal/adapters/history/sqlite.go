package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mikey/llm-mail-triage/internal/core"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the HistoryStore interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite history store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sender_history (
			sender TEXT PRIMARY KEY,
			category TEXT,
			seen_count INTEGER DEFAULT 0,
			last_seen TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Record notes that a sender's latest message landed in category
func (s *SQLiteStore) Record(ctx context.Context, sender string, category core.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sender_history (sender, category, seen_count, last_seen)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(sender) DO UPDATE SET
			category = excluded.category,
			seen_count = seen_count + 1,
			last_seen = excluded.last_seen
	`, sender, category.String(), time.Now().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to record sender history: %w", err)
	}
	return nil
}

// List returns every recorded sender with its last category
func (s *SQLiteStore) List(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sender, category FROM sender_history`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sender history: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var sender, category string
		if err := rows.Scan(&sender, &category); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		out[sender] = category
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}
	return out, nil
}

// Clear drops all recorded history
func (s *SQLiteStore) Clear(ctx context.Context) error {
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
