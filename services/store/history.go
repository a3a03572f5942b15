package store

import (
	"context"
	"database/sql"
	"errors"
)

// History answers "has this identifier already triggered an alert" and
// records new ones. Implemented by Store and by the in-memory fallback.
type History interface {
	Contains(ctx context.Context, identifier string) (bool, error)
	Record(ctx context.Context, identifier string) error
}

// Contains reports whether identifier was already recorded
func (s *Store) Contains(ctx context.Context, identifier string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM history WHERE identifier = ?`, identifier).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// Record appends identifier to the history. Re-recording a known
// identifier is a no-op. When the table grows past the cap, the oldest
// rows beyond it are deleted (bounded rotation).
func (s *Store) Record(ctx context.Context, identifier string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO history(identifier) VALUES (?)`, identifier); err != nil {
		return err
	}
	if s.maxHistory <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY id DESC LIMIT ?
		)`, s.maxHistory)
	return err
}
