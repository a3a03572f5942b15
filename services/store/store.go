// Package store persists the two durable artifacts of the scout: the
// history of already-alerted listing identifiers and the per-term keyword
// statistics. Both live in a single SQLite database so they survive
// process restarts.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// KeywordStat tracks how one search term has performed.
type KeywordStat struct {
	Term    string
	Checked int
	Hits    int
}

// Score ranks a term for selection: hits minus a decay per evaluation, so
// terms that keep getting checked without producing alerts sink.
func (k KeywordStat) Score(decay float64) float64 {
	return float64(k.Hits) - float64(k.Checked)*decay
}

// Store is the SQLite-backed implementation. A single orchestrator
// instance owns the file; writes are appends, last-writer-wins.
type Store struct {
	db         *sql.DB
	maxHistory int
}

// Open opens (or creates) the database at path and bootstraps the schema.
// maxHistory caps the history table: the oldest rows beyond the cap are
// rotated out on insert, never wholesale-cleared.
func Open(path string, maxHistory int) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, maxHistory: maxHistory}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			identifier TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS keyword_stats (
			term TEXT PRIMARY KEY,
			checked INTEGER NOT NULL DEFAULT 0,
			hits INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
