package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	// Register the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"digibouquet/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS bouquets (
	id         TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS bouquets_created_at ON bouquets (created_at);
`

// SQLiteStore persists bouquets as JSON documents in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (and if needed creates) the database at path. ":memory:" is accepted.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000", path)
		if path != ":memory:" {
			dsn += "&_journal_mode=WAL"
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open bouquet database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bouquet schema: %w", err)
	}

	logger.Info("Bouquet database ready", zap.String("path", path))

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Save inserts a bouquet. IDs are never reused.
func (s *SQLiteStore) Save(ctx context.Context, b *core.Bouquet) error {
	if b.ID == "" {
		return errors.New("bouquet has no id")
	}

	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode bouquet: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bouquets (id, payload, created_at) VALUES (?, ?, ?)`,
		b.ID, string(payload), b.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert bouquet %s: %w", b.ID, err)
	}

	return nil
}

// Get loads a bouquet by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.Bouquet, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM bouquets WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bouquet %s: %w", id, err)
	}

	var b core.Bouquet
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		return nil, fmt.Errorf("failed to decode bouquet %s: %w", id, err)
	}

	return &b, nil
}

// Count returns the number of stored bouquets.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bouquets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bouquets: %w", err)
	}
	return n, nil
}

// IDs returns the IDs of all bouquets created since the given time, oldest first.
func (s *SQLiteStore) IDs(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM bouquets WHERE created_at >= ? ORDER BY created_at`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list bouquet ids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan bouquet id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
