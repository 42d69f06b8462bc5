package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cheerforge/cheerforge/internal/config"
	"github.com/cheerforge/cheerforge/internal/platform/postgres"
	"github.com/google/uuid"
)

// Commands accepted by the -migrate flag.
const (
	migrateUp     = "up"
	migrateStatus = "status"
	migrateReset  = "reset"
)

func validateMigrateCommand(cmd string) error {
	switch cmd {
	case "", migrateUp, migrateStatus, migrateReset:
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q (want %s, %s or %s)", cmd, migrateUp, migrateStatus, migrateReset)
	}
}

// handleMigrations runs a single migration command against the configured
// database and returns.
func handleMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, cmd string) error {
	migrationLogger := logger.With(
		"component", "migrations",
		"command", cmd,
		"correlation_id", uuid.NewString(),
	)

	db, err := postgres.Open(ctx, cfg.Database.URL, 1, 1)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			migrationLogger.Error("failed to close database connection", "error", cerr)
		}
	}()

	migrationLogger.Info("running migration command")

	switch cmd {
	case migrateUp:
		err = postgres.Migrate(ctx, db, migrationLogger)
	case migrateStatus:
		err = postgres.Status(ctx, db, migrationLogger)
	case migrateReset:
		err = postgres.Rollback(ctx, db, migrationLogger)
	default:
		err = validateMigrateCommand(cmd)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", cmd, err)
	}

	migrationLogger.Info("migration command completed")
	return nil
}
