// Package postgres provides a PostgreSQL implementation of storage.ResultCache.
// It uses pgx/v5 for connection pooling, BYTEA for payloads and JSONB for
// metadata.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/storage"
)

// uniqueViolation is the PostgreSQL SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// Cache is a PostgreSQL-backed ResultCache.
type Cache struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Ensure Cache implements storage.ResultCache at compile time.
var _ storage.ResultCache = (*Cache)(nil)

// New creates a new PostgreSQL cache with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Cache, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	c := &Cache{pool: pool, logger: logger.With("component", "storage.postgres")}

	if cfg.MigrateOnStart {
		if err := c.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}
	return c, nil
}

// Put inserts an entry in a single statement, so readers never observe a
// partially written row.
func (c *Cache) Put(ctx context.Context, entry *api.CacheEntry) error {
	meta := entry.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	data := entry.Data
	if data == nil {
		data = []byte{}
	}

	_, err = c.pool.Exec(ctx,
		"INSERT INTO results (id, format, data, metadata) VALUES ($1, $2, $3, $4)",
		entry.ID, entry.Format, data, metaJSON,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting result: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID.
func (c *Cache) Get(ctx context.Context, id string) (*api.CacheEntry, error) {
	var (
		entry    api.CacheEntry
		metaJSON []byte
	)
	err := c.pool.QueryRow(ctx,
		"SELECT id, format, data, metadata FROM results WHERE id = $1",
		id,
	).Scan(&entry.ID, &entry.Format, &entry.Data, &metaJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying result: %w", err)
	}

	entry.Metadata = map[string]any{}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	return &entry, nil
}

// Len returns the number of stored results.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.pool.QueryRow(ctx, "SELECT count(*) FROM results").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting results: %w", err)
	}
	return n, nil
}

// HealthCheck verifies the database connection.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	c.pool.Close()
	return nil
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
