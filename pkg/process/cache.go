package process

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhuss/procunit/pkg/config"
	"github.com/rhuss/procunit/pkg/storage"
	"github.com/rhuss/procunit/pkg/storage/memory"
	"github.com/rhuss/procunit/pkg/storage/postgres"
	"github.com/rhuss/procunit/pkg/storage/sqlite"
)

// OpenCache creates the result cache selected by storage.type.
func OpenCache(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.ResultCache, error) {
	switch cfg.Type {
	case "", "memory":
		return memory.New(cfg.MaxSize), nil
	case "sqlite":
		c, err := sqlite.Open(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite cache: %w", err)
		}
		return c, nil
	case "postgres":
		c, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("opening postgres cache: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
