// Package db provides schema migrations and the change notification bridge.
//
// Migration files live in internal/db/migrations/ and are embedded via
// //go:embed. Each file carries its Up and Down sections
// (-- +goose Up / -- +goose Down). goose keeps its own version table
// (goose_db_version).
package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/dbpool"
)

// MigrationStatus describes one migration file and whether it is applied.
type MigrationStatus struct {
	Version   int64     `json:"version"`
	File      string    `json:"file"`
	Applied   bool      `json:"applied"`
	AppliedAt time.Time `json:"applied_at,omitzero"`
}

// withProvider opens a database/sql handle on the pool's connection string
// and runs fn with a goose provider over fsys.
func withProvider(pool *dbpool.Pool, fsys fs.FS, fn func(*goose.Provider) error) error {
	// goose requires a *sql.DB; wrap the same DSN via the pgx stdlib driver.
	sqlDB, err := sql.Open("pgx", pool.ConnString())
	if err != nil {
		return fmt.Errorf("opening sql.DB for migrations: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	return fn(provider)
}

// RunMigrations applies all pending migrations from the provided filesystem.
// The fsys should contain goose-annotated SQL files (e.g. "001_initial.sql").
func RunMigrations(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger, fsys fs.FS) error {
	return withProvider(pool, fsys, func(provider *goose.Provider) error {
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}

		for _, r := range results {
			if r.Error != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", r.Source.Version, r.Source.Path, r.Error)
			}

			log.WithFields(logrus.Fields{
				"version":  r.Source.Version,
				"file":     r.Source.Path,
				"duration": r.Duration,
			}).Info("migration applied")
		}

		if len(results) == 0 {
			log.Debug("all migrations already applied")
		}

		return nil
	})
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger, fsys fs.FS) error {
	return withProvider(pool, fsys, func(provider *goose.Provider) error {
		r, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("rolling back migration: %w", err)
		}

		log.WithFields(logrus.Fields{
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration,
		}).Info("migration rolled back")

		return nil
	})
}

// MigrationStatuses lists every embedded migration with its applied state.
func MigrationStatuses(ctx context.Context, pool *dbpool.Pool, fsys fs.FS) ([]MigrationStatus, error) {
	var out []MigrationStatus

	err := withProvider(pool, fsys, func(provider *goose.Provider) error {
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("reading migration status: %w", err)
		}

		out = make([]MigrationStatus, 0, len(statuses))
		for _, s := range statuses {
			out = append(out, MigrationStatus{
				Version:   s.Source.Version,
				File:      s.Source.Path,
				Applied:   s.State == goose.StateApplied,
				AppliedAt: s.AppliedAt,
			})
		}

		return nil
	})

	return out, err
}
