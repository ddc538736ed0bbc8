package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/csvprobe/internal/config"
	"github.com/JonMunkholm/csvprobe/internal/core"
	"github.com/JonMunkholm/csvprobe/internal/metrics"
	"github.com/JonMunkholm/csvprobe/internal/store"
	"github.com/JonMunkholm/csvprobe/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve validation and metadata over HTTP",
		Long: `serve starts the JSON API (POST /api/validate, POST /api/metadata,
GET /api/reports/{id}, GET /api/status). Reports are stored in PostgreSQL
when DATABASE_URL is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides SERVER_PORT)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	validator := core.NewValidator(a.logger,
		core.WithRecorder(metrics.NewCollector(reg)),
		core.WithLoadOptions(core.LoadOptions{
			Delimiter:  a.cfg.Validation.DelimiterRune(),
			ParseDates: a.cfg.Validation.ParseDates,
		}),
	)

	opts := []web.Option{
		web.WithLogger(a.logger),
		web.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	}

	if a.cfg.Database.Enabled() {
		pool, err := openPool(ctx, a.cfg.Database, a.logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		db := stdlib.OpenDBFromPool(pool)
		defer db.Close()

		reports := store.NewReports(db)
		if err := reports.EnsureSchema(ctx); err != nil {
			return err
		}
		opts = append(opts, web.WithReports(reports))
	} else {
		a.logger.Info("DATABASE_URL not set, reports will not be stored")
	}

	server := web.NewServer(a.cfg, validator, opts...)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func openPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		logger.Info("connected to database", zap.String("name", strings.TrimPrefix(u.Path, "/")))
	} else {
		logger.Info("connected to database")
	}
	return pool, nil
}
