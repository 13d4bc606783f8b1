package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"
)

// LocalStore keeps guest carts on the server's disk, one JSON snapshot per
// guest id. Every change rewrites the whole snapshot.
type LocalStore struct {
	db *sql.DB
}

var _ Persister = (*LocalStore)(nil)

// NewLocalStore opens (or creates) the SQLite file at path.
func NewLocalStore(path string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create guest cart directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open guest cart db: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS guest_carts (
			guest_id TEXT PRIMARY KEY,
			snapshot TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create guest_carts: %w", err)
	}

	return &LocalStore{db: db}, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Load returns the guest's saved lines. An unreadable snapshot is deleted and
// the guest starts with an empty cart.
func (s *LocalStore) Load(ctx context.Context, guestID string) ([]Line, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM guest_carts WHERE guest_id = ?`, guestID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read guest cart: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		slog.Warn("discarding corrupt guest cart", "guest_id", guestID, "error", err)
		if err := s.delete(ctx, guestID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return lines, nil
}

func (s *LocalStore) Apply(ctx context.Context, guestID string, change Change) error {
	if change.Kind == ChangeClear || len(change.Snapshot) == 0 {
		return s.delete(ctx, guestID)
	}

	raw, err := json.Marshal(change.Snapshot)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO guest_carts (guest_id, snapshot, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (guest_id) DO UPDATE
		SET snapshot = excluded.snapshot, updated_at = excluded.updated_at
	`, guestID, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write guest cart: %w", err)
	}
	return nil
}

func (s *LocalStore) delete(ctx context.Context, guestID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM guest_carts WHERE guest_id = ?`, guestID); err != nil {
		return fmt.Errorf("delete guest cart: %w", err)
	}
	return nil
}
