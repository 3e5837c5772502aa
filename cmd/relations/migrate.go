package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/persistorai/relations/internal/config"
	"github.com/persistorai/relations/internal/db"
	"github.com/persistorai/relations/internal/db/migrations"
	"github.com/persistorai/relations/internal/dbpool"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema (reads DATABASE_URL)",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrationPool(cmd.Context(), func(ctx context.Context, cfg *config.Config, pool *dbpool.Pool) error {
				return db.RunMigrations(ctx, pool, newLogger(cfg.LogLevel), migrations.FS)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrationPool(cmd.Context(), func(ctx context.Context, cfg *config.Config, pool *dbpool.Pool) error {
				return db.RollbackMigration(ctx, pool, newLogger(cfg.LogLevel), migrations.FS)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrationPool(cmd.Context(), func(ctx context.Context, _ *config.Config, pool *dbpool.Pool) error {
				statuses, err := db.MigrationStatuses(ctx, pool, migrations.FS)
				if err != nil {
					return err
				}

				if flagFmt == "table" {
					rows := make([][]string, len(statuses))
					for i, s := range statuses {
						applied := "pending"
						if s.Applied {
							applied = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
						rows[i] = []string{strconv.FormatInt(s.Version, 10), s.File, applied}
					}
					formatTable(cmd.OutOrStdout(), []string{"VERSION", "FILE", "APPLIED"}, rows)

					return nil
				}

				return formatJSON(cmd.OutOrStdout(), statuses)
			})
		},
	})
	return cmd
}

func withMigrationPool(ctx context.Context, fn func(context.Context, *config.Config, *dbpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.StoreBackend != config.BackendPostgres {
		return fmt.Errorf("migrations apply to the postgres backend, STORE_BACKEND is %q", cfg.StoreBackend)
	}

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
