package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/tslens/internal/logging"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewSQLiteStore creates a new SQLite storage
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	// WAL mode lets readers run alongside the writer
	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot_records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		root TEXT NOT NULL,
		commit_sha TEXT NOT NULL DEFAULT '',
		typed_percentage REAL NOT NULL,
		typed INTEGER NOT NULL,
		dynamic INTEGER NOT NULL,
		churn_files INTEGER NOT NULL,
		top_file TEXT NOT NULL DEFAULT '',
		top_changes INTEGER NOT NULL DEFAULT 0,
		recorded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshot_records_root ON snapshot_records(root, recorded_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save inserts rec
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	ensureID(rec)

	query := `
		INSERT INTO snapshot_records
		(id, root, commit_sha, typed_percentage, typed, dynamic,
		 churn_files, top_file, top_changes, recorded_at)
		VALUES (:id, :root, :commit_sha, :typed_percentage, :typed, :dynamic,
		 :churn_files, :top_file, :top_changes, :recorded_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("insert snapshot record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"id": rec.ID, "root": rec.Root}).Debug("Saved snapshot record")
	return nil
}

// List returns records for root, newest first
func (s *SQLiteStore) List(ctx context.Context, root string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	query := `
		SELECT id, root, commit_sha, typed_percentage, typed, dynamic,
		       churn_files, top_file, top_changes, recorded_at
		FROM snapshot_records
		WHERE root = ?
		ORDER BY recorded_at DESC, seq DESC
		LIMIT ?
	`

	var records []*Record
	if err := s.db.SelectContext(ctx, &records, query, root, limit); err != nil {
		return nil, fmt.Errorf("list snapshot records: %w", err)
	}
	return records, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
