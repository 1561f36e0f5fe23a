package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"github.com/Aman-CERP/kbmcp/internal/kberrors"
)

// Store is the SQLite-backed relational store of items, chunks,
// categories, tags, and relationships.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
	lock *WriterLock

	chunkCache    *lru.Cache[string, []Chunk]
	adjacentCache *lru.Cache[string, []Chunk]
}

// Open opens (creating if necessary) the store file at path, enabling WAL
// mode and foreign-key enforcement, and acquiring the single-writer
// process lock.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, kberrors.New(kberrors.ErrCodeConfigInvalid, "storage.path must not be empty", nil)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("failed to create storage directory: %w", err))
	}

	lock, err := AcquireWriterLock(path)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}

	if err := validateIntegrity(path); err != nil {
		slog.Warn("store file failed integrity check, recreating",
			slog.String("path", path), slog.String("error", err.Error()))
		_ = os.Remove(path)
		_ = os.Remove(path + "-wal")
		_ = os.Remove(path + "-shm")
	}

	dsn := path + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		lock.Release()
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("failed to open store: %w", err))
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			lock.Release()
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("failed to set pragma %q: %w", p, err))
		}
	}

	if err := assertForeignKeysOn(db); err != nil {
		_ = db.Close()
		lock.Release()
		return nil, err
	}

	chunkCache, _ := lru.New[string, []Chunk](2048)
	adjacentCache, _ := lru.New[string, []Chunk](2048)

	s := &Store{
		db:            db,
		path:          path,
		lock:          lock,
		chunkCache:    chunkCache,
		adjacentCache: adjacentCache,
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		lock.Release()
		return nil, err
	}

	return s, nil
}

// Close releases the database connection and the writer lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Close()
	s.lock.Release()
	return err
}

// assertForeignKeysOn guards the data-integrity hazard flagged by the
// spec: cascade delete depends on foreign_keys actually being enabled for
// this connection.
func assertForeignKeysOn(db *sql.DB) error {
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("failed to read foreign_keys pragma: %w", err))
	}
	if enabled != 1 {
		return kberrors.New(kberrors.ErrCodeForeignKeysOff, "foreign_keys enforcement is not active on this connection", nil)
	}
	return nil
}

func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("store file corrupted: %s", result)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	source_type TEXT NOT NULL,
	source_path TEXT,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id TEXT PRIMARY KEY,
	item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	heading TEXT NOT NULL DEFAULT '',
	start_position INTEGER NOT NULL,
	end_position INTEGER NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_chunks_item ON chunks(item_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_chunks_item_index ON chunks(item_id, chunk_index);

CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS tags (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS category_items (
	item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (item_id, category_id)
);

CREATE TABLE IF NOT EXISTS tag_items (
	item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (item_id, tag_id)
);

CREATE TABLE IF NOT EXISTS relationships (
	source_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	target_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	PRIMARY KEY (source_id, target_id, type)
);
`

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("failed to initialize schema: %w", err))
	}
	return nil
}
