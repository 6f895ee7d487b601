// Package store persists document versions, ingestion runs and their
// produced artifacts (anchors, chunks, facts, schedule matrices) in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// Store is a SQLite backed persistence layer.
type Store struct {
	db            *sql.DB
	dsn           string
	ensureSchema  bool
	openedLocally bool
}

// Option configures the store.
type Option func(*Store)

// WithDB sets an existing *sql.DB to use.
func WithDB(db *sql.DB) Option {
	return func(s *Store) { s.db = db }
}

// WithDSN sets the SQLite DSN to open (e.g. /path/to/db.sqlite).
func WithDSN(dsn string) Option {
	return func(s *Store) { s.dsn = dsn }
}

// WithEnsureSchema controls whether tables and indexes are created
// automatically.
func WithEnsureSchema(enabled bool) Option {
	return func(s *Store) { s.ensureSchema = enabled }
}

// New opens/initializes a Store.
func New(opts ...Option) (*Store, error) {
	s := &Store{ensureSchema: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.db == nil {
		if s.dsn == "" {
			return nil, fmt.Errorf("store: dsn required")
		}
		db, err := sql.Open("sqlite", ensurePragmas(s.dsn, true, 5000))
		if err != nil {
			return nil, err
		}
		s.db = db
		s.db.SetMaxOpenConns(4)
		s.db.SetMaxIdleConns(4)
		s.openedLocally = true
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	} {
		// optional pragmas, in-memory databases reject some of them
		_, _ = s.db.Exec(pragma)
	}
	if s.ensureSchema {
		if err := s.ensureSchemaDDL(context.Background()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close closes the underlying DB if the Store opened it.
func (s *Store) Close() error {
	if s.openedLocally && s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying sql.DB.
func (s *Store) DB() *sql.DB { return s.db }

// ensurePragmas appends SQLite pragmas to the DSN when missing.
// It is a no-op for in-memory databases.
func ensurePragmas(dsn string, wal bool, busyTimeoutMS int) string {
	lower := strings.ToLower(dsn)
	if dsn == ":memory:" || strings.HasPrefix(lower, "file::memory:") {
		return dsn
	}
	if !strings.HasPrefix(lower, "file:") {
		dsn = "file:" + dsn
		lower = "file:" + lower
	}
	if wal && !strings.Contains(lower, "_pragma=journal_mode") {
		dsn = addPragma(dsn, "journal_mode(WAL)")
	}
	if busyTimeoutMS > 0 && !strings.Contains(lower, "_pragma=busy_timeout") {
		dsn = addPragma(dsn, fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	}
	return dsn
}

func addPragma(dsn, pragma string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=" + pragma
}

func (s *Store) ensureSchemaDDL(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS doc_version (
			id         TEXT PRIMARY KEY,
			source_uri TEXT,
			format     TEXT,
			lang       TEXT,
			status     TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS ingestion_run (
			id               TEXT PRIMARY KEY,
			version_id       TEXT NOT NULL,
			status           TEXT NOT NULL,
			pipeline_version TEXT,
			config_hash      TEXT,
			summary          TEXT,
			quality          TEXT,
			warnings         TEXT,
			errors           TEXT,
			started_at       TIMESTAMP NOT NULL,
			finished_at      TIMESTAMP,
			duration_ms      INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS anchor (
			version_id   TEXT NOT NULL,
			run_id       TEXT NOT NULL,
			id           TEXT NOT NULL,
			section_path TEXT NOT NULL,
			content_type TEXT NOT NULL,
			ordinal      INTEGER NOT NULL,
			hash         TEXT NOT NULL,
			content      TEXT,
			normalized   TEXT,
			zone         TEXT,
			lang         TEXT,
			table_id     TEXT,
			row_idx      INTEGER NOT NULL DEFAULT 0,
			col_idx      INTEGER NOT NULL DEFAULT 0,
			superseded   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (version_id, run_id, id)
		);`,
		`CREATE TABLE IF NOT EXISTS chunk (
			version_id   TEXT NOT NULL,
			run_id       TEXT NOT NULL,
			seq          INTEGER NOT NULL,
			section_path TEXT NOT NULL,
			zone         TEXT,
			lang         TEXT,
			content      TEXT,
			embedding    BLOB,
			anchor_ids   TEXT,
			PRIMARY KEY (version_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS fact (
			version_id TEXT NOT NULL,
			run_id     TEXT NOT NULL,
			pos        INTEGER NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			unit       TEXT,
			confidence REAL NOT NULL,
			anchor_id  TEXT NOT NULL,
			PRIMARY KEY (version_id, pos)
		);`,
		`CREATE TABLE IF NOT EXISTS soa_matrix (
			version_id   TEXT PRIMARY KEY,
			run_id       TEXT NOT NULL,
			found        INTEGER NOT NULL DEFAULT 0,
			confidence   REAL NOT NULL DEFAULT 0,
			table_anchor TEXT,
			visits       TEXT,
			procedures   TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS soa_entry (
			version_id TEXT NOT NULL,
			run_id     TEXT NOT NULL,
			pos        INTEGER NOT NULL,
			visit      TEXT NOT NULL,
			procedure  TEXT NOT NULL,
			value      TEXT NOT NULL,
			anchor_id  TEXT NOT NULL,
			PRIMARY KEY (version_id, pos)
		);`,
		`CREATE TABLE IF NOT EXISTS lease (
			version_id  TEXT PRIMARY KEY,
			owner       TEXT NOT NULL,
			acquired_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_run_version ON ingestion_run(version_id, started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_anchor_type ON anchor(version_id, content_type, superseded);`,
		`CREATE INDEX IF NOT EXISTS idx_fact_key ON fact(version_id, key);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
