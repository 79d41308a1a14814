package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"linknorm/internal/api"
	"linknorm/internal/config"
	"linknorm/internal/renorm"
	"linknorm/internal/storage"
	"linknorm/internal/storage/postgres"
	"linknorm/internal/storage/sqlite"
)

func main() {
	// The main function is the entry point of the application.
	// It's responsible for initializing components, starting the server,
	// and handling graceful shutdown.
	if err := run(); err != nil {
		log.Fatalf("application failed: %v", err)
	}
	log.Println("application shut down gracefully")
}

func run() error {
	// Load application configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	opts := cfg.NormalizeOptions()

	// Create a context that is canceled on OS signals like SIGINT or SIGTERM.
	// This is the foundation for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize the storage layer.
	var store storage.Storer
	switch cfg.DatabaseDriver {
	case "sqlite":
		log.Println("initializing SQLite database connection...")
		sqliteStore, err := sqlite.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	case "postgres":
		log.Println("initializing PostgreSQL connection pool...")
		pgStore, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		defer pgStore.Close()
		store = pgStore
	default:
		return fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
	log.Println("database connection successful")

	// Initialize the background re-normalization sweeper and the API server.
	sweeper := renorm.New(store, opts, cfg.RenormInterval, cfg.MaxConcurrency)
	server := api.NewServer(cfg.HTTPPort, store, opts)

	// Start the services.
	sweeper.Start()
	server.Start()

	log.Println("application is running...")

	// Block here until the context is canceled (e.g., by pressing Ctrl+C).
	<-ctx.Done()

	// --- Graceful shutdown logic ---
	log.Println("shutdown signal received, starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()

	// Stop the sweeper first so no new rewrites start mid-shutdown.
	sweeper.Stop()

	// Then, shut down the HTTP server, allowing in-flight requests to finish.
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown error: %w", err)
	}

	return nil
}
