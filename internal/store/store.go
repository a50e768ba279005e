// Package store is an optional SQLite cache for the definition index. A run
// without a cache rebuilds everything in memory; with one, units whose
// content hash is unchanged skip re-scanning. The cache only memoizes the
// indexer; bodies and closures are always computed fresh.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the definition-index cache.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id            INTEGER PRIMARY KEY,
  path          TEXT NOT NULL UNIQUE,
  language      TEXT,
  hash          TEXT,
  last_indexed  TIMESTAMP
);

CREATE TABLE IF NOT EXISTS definitions (
  id       INTEGER PRIMARY KEY,
  file_id  INTEGER NOT NULL REFERENCES files(id),
  name     TEXT NOT NULL,
  ordinal  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key    TEXT PRIMARY KEY,
  value  TEXT
);

CREATE INDEX IF NOT EXISTS idx_definitions_file ON definitions(file_id);
CREATE INDEX IF NOT EXISTS idx_definitions_name ON definitions(name);
`

// File is a cached source file record.
type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	LastIndexed time.Time
}

// FileByPath returns the file record for a path, or nil if absent.
func (s *Store) FileByPath(path string) (*File, error) {
	var f File
	err := s.db.QueryRow(
		"SELECT id, path, COALESCE(language, ''), COALESCE(hash, ''), last_indexed FROM files WHERE path = ?",
		path,
	).Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return &f, nil
}

// InsertFile inserts a file record and returns its ID.
func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, language, hash, last_indexed) VALUES (?, ?, ?, ?)",
		f.Path, f.Language, f.Hash, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	return res.LastInsertId()
}

// DeleteFileData transactionally removes a file record and its definitions.
func (s *Store) DeleteFileData(fileID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM definitions WHERE file_id = ?", fileID); err != nil {
		return fmt.Errorf("delete definitions: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM files WHERE id = ?", fileID); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	return tx.Commit()
}

// InsertDefinitions records a file's definition names in appearance order.
func (s *Store) InsertDefinitions(fileID int64, names []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO definitions (file_id, name, ordinal) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, name := range names {
		if _, err := stmt.Exec(fileID, name, i); err != nil {
			return fmt.Errorf("insert definition %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// DefinitionNames returns a file's definition names in appearance order.
func (s *Store) DefinitionNames(fileID int64) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT name FROM definitions WHERE file_id = ? ORDER BY ordinal",
		fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("definition names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan definition name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Reset drops all cached files and definitions, keeping metadata.
func (s *Store) Reset() error {
	for _, q := range []string{
		"DELETE FROM definitions",
		"DELETE FROM files",
	} {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}

// GetMetadata returns the value for a metadata key, or "" if unset.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata: %w", err)
	}
	return value, nil
}

// SetMetadata upserts a metadata key.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}
