package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/relations/internal/api"
	"github.com/persistorai/relations/internal/cache"
	"github.com/persistorai/relations/internal/config"
	"github.com/persistorai/relations/internal/db"
	"github.com/persistorai/relations/internal/relation"
	"github.com/persistorai/relations/internal/service"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and metrics servers",
		Long: `Run the HTTP API and metrics servers.

Configuration is read from the environment: STORE_BACKEND (postgres, neo4j,
memory), DATABASE_URL, NEO4J_URI, PORT, METRICS_PORT, LOG_LEVEL and the
paging and size cache settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg, newLogger(cfg.LogLevel))
		},
	}
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

// runServer serves until ctx is cancelled or a server fails, then shuts
// both servers down.
func runServer(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.close()

	pager, err := relation.NewPaginator(relation.PageConfig{
		DefaultPage: cfg.DefaultPage,
		DefaultSize: cfg.DefaultPageSize,
		MaxSize:     cfg.MaxPageSize,
	})
	if err != nil {
		return fmt.Errorf("paging config: %w", err)
	}

	var relOpts []service.RelationOption

	if cfg.SizeCacheEnabled() {
		sizes := cache.NewSizeCache(log, cache.WithMaxEntries(cfg.SizeCacheMax), cache.WithTTL(cfg.SizeCacheTTL))
		defer sizes.Stop()

		relOpts = append(relOpts, service.WithSizeCache(sizes))

		// Writes from other instances only reach the cache through NOTIFY.
		if be.pool != nil {
			if err := db.NewNotifyBridge(log, be.pool, sizes).Start(ctx); err != nil {
				return err
			}
		}
	}

	handler := api.NewRouter(&api.RouterDeps{
		Log:           log,
		Store:         be.health,
		Nodes:         service.NewNodeService(be.graph, log),
		Relations:     service.NewRelationService(be.graph, pager, log, relOpts...),
		Backend:       cfg.StoreBackend,
		Version:       config.Version,
		SchemaVersion: be.schemaVersion(),
		CORSOrigins:   cfg.CORSOrigins,
	})

	apiSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listen(apiSrv, log, "api") })
	g.Go(func() error { return listen(metricsSrv, log, "metrics") })
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(apiSrv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

func listen(srv *http.Server, log *logrus.Logger, name string) error {
	log.WithFields(logrus.Fields{"server": name, "addr": srv.Addr}).Info("listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}

	return nil
}
