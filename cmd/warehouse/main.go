// Package main is the entry point for the bike-share warehouse service.
// Its sole responsibility is wiring dependencies together, executing the
// bootstrap pipeline run, and starting the HTTP server. No business logic
// belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/citybike/warehouse/internal/config"
	"github.com/citybike/warehouse/internal/handler"
	"github.com/citybike/warehouse/internal/ingest"
	"github.com/citybike/warehouse/internal/middleware"
	"github.com/citybike/warehouse/internal/pipeline"
	"github.com/citybike/warehouse/internal/warehouse"
	"github.com/citybike/warehouse/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger. JSON handler writes
	// machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Store ------------------------------------------------------------
	// An empty DATABASE_URL selects the in-memory store; otherwise connect,
	// migrate, and persist every materialization in Postgres.
	var store warehouse.Store
	if cfg.DatabaseURL == "" {
		slog.Info("no DATABASE_URL set, using in-memory store")
		store = warehouse.NewMemoryStore()
	} else {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		slog.Info("database connection established")

		if err := migrate(cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		store = warehouse.NewPostgresStore(pool)
	}

	// --- Source -----------------------------------------------------------
	var source *ingest.Source
	if cfg.RawDataPath == "" {
		slog.Info("no RAW_DATA_PATH set, using generated sample source",
			"records", cfg.SampleSize)
		source = ingest.Sample(cfg.SampleSize)
	} else {
		source, err = ingest.ReadCSVFile(cfg.RawDataPath)
		if err != nil {
			slog.Error("failed to read raw data", "error", err)
			os.Exit(1)
		}
		slog.Info("raw data loaded", "path", cfg.RawDataPath, "records", len(source.Records))
	}

	// --- Bootstrap run ----------------------------------------------------
	runner := pipeline.New(store, source, cfg.EvaluatedAt, logger)
	report, err := runner.Run(context.Background())
	if err != nil {
		slog.Error("bootstrap pipeline run failed", "error", err)
		os.Exit(1)
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	srv := handler.NewServer(store, runner)
	srv.SetLatestReport(report)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(1 << 20))
	srv.Register(r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The write timeout is generous because POST /runs executes a full
	// pipeline pass before responding.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies all pending goose migrations from the embedded FS.
// Goose needs database/sql, not a pgx pool, so it gets its own short-lived
// connection.
func migrate(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	if len(results) > 0 {
		slog.Info("migrations applied", "count", len(results))
	}
	return nil
}
