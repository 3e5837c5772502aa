package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/api"
	"github.com/persistorai/relations/internal/config"
	"github.com/persistorai/relations/internal/db"
	"github.com/persistorai/relations/internal/db/migrations"
	"github.com/persistorai/relations/internal/dbpool"
	"github.com/persistorai/relations/internal/domain"
	"github.com/persistorai/relations/internal/store"
	"github.com/persistorai/relations/internal/store/memory"
	"github.com/persistorai/relations/internal/store/neo4jstore"
)

// backend is an opened storage backend.
type backend struct {
	graph  domain.Graph
	health api.HealthChecker // nil for the in-memory backend
	pool   *dbpool.Pool      // set for postgres only
	close  func()
}

// openBackend connects to the configured store and prepares its schema.
func openBackend(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn("using the in-memory store; data is lost on exit")

		return &backend{graph: memory.New(log), close: func() {}}, nil

	case config.BackendNeo4j:
		s, err := neo4jstore.New(ctx, neo4jstore.Config{
			URI:       cfg.Neo4jURI,
			Username:  cfg.Neo4jUser,
			Password:  cfg.Neo4jPassword.Value(),
			Database:  cfg.Neo4jDatabase,
			FetchSize: cfg.CursorFetchSize,
		}, log)
		if err != nil {
			return nil, err
		}

		closeStore := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := s.Close(closeCtx); err != nil {
				log.WithError(err).Warn("closing neo4j driver")
			}
		}

		if err := s.EnsureSchema(ctx); err != nil {
			closeStore()

			return nil, err
		}

		return &backend{graph: s, health: s, close: closeStore}, nil

	default:
		pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), dbpool.WithMaxConns(int32(cfg.DBMaxConns))) //nolint:gosec // bounded by config validation.
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}

		if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
			pool.Close()

			return nil, err
		}

		graph := store.NewGraph(store.Base{Pool: pool, Log: log, FetchSize: cfg.CursorFetchSize})

		return &backend{graph: graph, health: pool, pool: pool, close: pool.Close}, nil
	}
}

// schemaVersion is reported by the health endpoint for SQL backends only.
func (b *backend) schemaVersion() int {
	if b.pool == nil {
		return 0
	}

	return db.SchemaVersion()
}
