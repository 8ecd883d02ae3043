// Package sqlite provides a SQLite-backed storage.ResultCache for single-node
// deployments that need results to survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/storage"
)

// Cache persists results in a SQLite database file.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure Cache implements storage.ResultCache at compile time.
var _ storage.ResultCache = (*Cache)(nil)

// Open opens (or creates) the database at path and applies embedded
// migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Cache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	c := &Cache{db: db, logger: logger.With("component", "storage.sqlite")}
	if err := c.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return c, nil
}

// Put inserts an entry as a single row.
func (c *Cache) Put(ctx context.Context, entry *api.CacheEntry) error {
	meta := entry.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	data := entry.Data
	if data == nil {
		data = []byte{}
	}

	_, err = c.db.ExecContext(ctx,
		"INSERT INTO results (id, format, data, metadata, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.Format, data, string(metaJSON), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID.
func (c *Cache) Get(ctx context.Context, id string) (*api.CacheEntry, error) {
	var (
		entry    api.CacheEntry
		metaJSON string
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT id, format, data, metadata FROM results WHERE id = ?",
		id,
	).Scan(&entry.ID, &entry.Format, &entry.Data, &metaJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query result: %w", err)
	}

	entry.Metadata = map[string]any{}
	if metaJSON != "" {
		if err := json.Unmarshal([]byte(metaJSON), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if entry.Data == nil {
		entry.Data = []byte{}
	}
	return &entry, nil
}

// Len returns the number of stored results.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

// HealthCheck pings the database.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
