// Package storage opens the repositories for the configured storage driver.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ArowuTest/prizedraw-backend/internal/config"
	"github.com/ArowuTest/prizedraw-backend/internal/repositories"
	"github.com/ArowuTest/prizedraw-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/prizedraw-backend/internal/repositories/mongodb"
	pgrepo "github.com/ArowuTest/prizedraw-backend/internal/repositories/postgres"
	"github.com/ArowuTest/prizedraw-backend/pkg/mongodb"
	"github.com/ArowuTest/prizedraw-backend/pkg/postgres"
	"golang.org/x/exp/slog"
)

// Stores are the opened repositories plus whatever must be closed at shutdown
type Stores struct {
	State   repositories.StateRepository
	Records repositories.DrawRecordRepository
	closeFn func(ctx context.Context) error
}

// Close releases the underlying connection, if any
func (s *Stores) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}

// Open connects to the backend named by cfg.Storage.Driver
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Storage.Driver {
	case config.StorageMongoDB:
		client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB.Database)
		slog.Info("Using MongoDB storage", "database", cfg.MongoDB.Database)
		return &Stores{
			State:   mongorepo.NewStateRepository(db),
			Records: mongorepo.NewDrawRecordRepository(db),
			closeFn: client.Disconnect,
		}, nil

	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := pgrepo.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to prepare PostgreSQL schema: %w", err)
		}
		slog.Info("Using PostgreSQL storage")
		return newSQLStores(db), nil

	case config.StorageMemory:
		slog.Warn("Using in-memory storage, draw state will not survive a restart")
		return &Stores{
			State:   memory.NewStateStore(),
			Records: memory.NewDrawRecordStore(),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func newSQLStores(db *sql.DB) *Stores {
	return &Stores{
		State:   pgrepo.NewStateRepository(db),
		Records: pgrepo.NewDrawRecordRepository(db),
		closeFn: func(context.Context) error { return db.Close() },
	}
}
