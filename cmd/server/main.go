// Package main implements the entry point for the LearnScripture API server,
// which serves Bible verse memorisation with spaced repetition, scoring,
// groups and donation drives.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/learnscripture-api/internal/config"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/phrazzld/learnscripture-api/internal/platform/postgres"
	"github.com/phrazzld/learnscripture-api/internal/platform/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("learnscripture-api: %v", err)
	}
}

func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"email_provider", cfg.Email.Provider,
		"version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	l.Info("database connection established", "url", postgres.MaskDatabaseURL(cfg.Database.URL))

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db.DB, migrateCmd, l)
	}
	if err := postgres.MigrateUp(ctx, db.DB, l); err != nil {
		_ = db.Close()
		return err
	}

	otelCfg, err := telemetry.LoadConfig()
	if err != nil {
		_ = db.Close()
		return err
	}
	shutdownTelemetry, err := telemetry.Setup(ctx, otelCfg)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to set up tracing: %w", err)
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	app.shutdownTelemetry = shutdownTelemetry

	return app.Run(ctx)
}
