package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const (
	tableSnapshots = "progress_snapshots"
	tableEvents    = "progression_events"
)

// schema is applied on every Open. Statements must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS progress_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		saved_at INTEGER NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS progression_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		kind TEXT NOT NULL,
		challenge TEXT NOT NULL DEFAULT '',
		step_index INTEGER NOT NULL DEFAULT 0,
		hint_key TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS progression_events_session ON progression_events (session_id)`,
}

// Store owns the SQLite connection and hands out repositories.
type Store struct {
	db  *sql.DB
	sq  *entsql.DialectBuilder
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, sq: entsql.Dialect(dialect.SQLite), seq: seq}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ProgressRepo returns a progress store that keeps the most recent keep
// snapshots. keep below 1 is treated as 1.
func (s *Store) ProgressRepo(keep int) *ProgressRepo {
	if keep < 1 {
		keep = 1
	}
	return &ProgressRepo{db: s.db, sq: s.sq, keep: keep}
}

// EventRepo returns an event log writer tagged with sessionID.
func (s *Store) EventRepo(sessionID string) *EventRepo {
	return &EventRepo{db: s.db, sq: s.sq, seq: s.seq, session: sessionID}
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DataDir resolves the directory holding the database, log and sandbox:
// $XDG_DATA_HOME/linuxstory, else ~/.local/share/linuxstory.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "linuxstory"), nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. LINUXSTORY_DB environment variable
// 2. $XDG_DATA_HOME/linuxstory/linuxstory.db
// 3. ~/.local/share/linuxstory/linuxstory.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("LINUXSTORY_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "linuxstory.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
