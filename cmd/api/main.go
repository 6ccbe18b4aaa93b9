// Command api serves the fleet log HTTP API: vehicle registry, fuel record
// batches from the CSV importer, listings, summaries and exports.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/fleetlog/internal/config"
	"github.com/pkordes/fleetlog/internal/handler"
	"github.com/pkordes/fleetlog/internal/middleware"
	"github.com/pkordes/fleetlog/internal/repo"
	"github.com/pkordes/fleetlog/internal/service"
	"github.com/pkordes/fleetlog/migrations"
)

const shutdownGrace = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The configured logger does not exist yet.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger, logCloser := config.StdoutLogger(cfg.LogLevel, cfg.LogFile)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("server exited", "error", err)
	}
	logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run connects to the database, serves until ctx is cancelled, then drains
// in-flight requests.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	logger.Info("database connection established")

	if cfg.AutoMigrate {
		if err := migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(cfg, pool, logger),
		// Multi-MiB CSV uploads need more than the usual read timeout.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newRouter wires repos, services and handlers behind the shared middleware:
// request ID, real IP, request log, panic recovery, CORS, body limit.
func newRouter(cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) http.Handler {
	vehicleRepo := repo.NewVehicleRepo(pool)
	fuelRepo := repo.NewFuelRepo(pool)
	server := handler.NewServer(
		service.NewFuelService(fuelRepo, vehicleRepo, logger),
		service.NewVehicleService(vehicleRepo),
		service.NewExportService(fuelRepo),
		logger,
	).WithDatabase(pool)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", server.Routes())
	return r
}

// migrate applies pending goose migrations through a database/sql handle
// borrowed from the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		logger.Info("migration applied", "source", res.Source.Path, "duration_ms", res.Duration.Milliseconds())
	}
	return nil
}
