package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// SQLiteStore is a SQLite implementation of the QueueStore interface.
// Queued items survive a process restart.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite queue store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS delivery_queue (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			payload TEXT NOT NULL,
			enqueued_at TIMESTAMP NOT NULL
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

// Load returns the stored items in enqueue order
func (s *SQLiteStore) Load(ctx context.Context) ([]core.QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload, enqueued_at
		FROM delivery_queue
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue: %w", err)
	}
	defer rows.Close()

	var items []core.QueueItem
	for rows.Next() {
		var payload string
		var enqueuedAt string
		if err := rows.Scan(&payload, &enqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, enqueuedAt)
		if err != nil {
			s.logger.Warn("Failed to parse enqueued_at timestamp", zap.Error(err))
			ts = time.Time{}
		}

		items = append(items, core.QueueItem{
			Payload:    json.RawMessage(payload),
			EnqueuedAt: ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queue rows: %w", err)
	}

	return items, nil
}

// Save replaces the stored items in a single transaction
func (s *SQLiteStore) Save(ctx context.Context, items []core.QueueItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM delivery_queue`); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO delivery_queue (payload, enqueued_at)
		VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, string(item.Payload), item.EnqueuedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to insert queue item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit queue save: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
