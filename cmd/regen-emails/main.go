package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tendant/persona-idgen/internal/config"
	"github.com/tendant/persona-idgen/internal/regen"
	"github.com/tendant/persona-idgen/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		URL:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	if cfg.RunMigrations {
		if err := repository.Migrate(db); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Initialize repositories
	tenantsRepo := repository.NewTenantsRepository(db)
	usersRepo := repository.NewUsersRepository(db)

	logger.Info("starting regeneration",
		"tenant_slug", cfg.TenantSlug,
		"tenant_id", cfg.TenantID,
		"domain_override", cfg.HasDomainOverride(),
		"dry_run", cfg.DryRun,
	)

	svc := regen.NewService(tenantsRepo, usersRepo, logger)
	report, err := svc.Run(ctx, regen.Options{
		TenantID:         cfg.TenantID,
		TenantSlug:       cfg.TenantSlug,
		Namespace:        cfg.EmailDomain,
		DryRun:           cfg.DryRun,
		RewriteUnchanged: cfg.RewriteUnchanged,
		Statuses:         cfg.MembershipStatuses,
	})
	if report != nil {
		if perr := report.Print(os.Stderr); perr != nil {
			logger.Error("failed to print report", "error", perr)
		}
	}
	if err != nil {
		logger.Error("regeneration failed", "error", err)
		// os.Exit skips deferred calls.
		db.Close()
		os.Exit(1)
	}
}
