package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/storefront-analytics/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// VersionTable records which migrations have run.
const VersionTable = "schema_version"

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the embedded migration files, rooted at their
// directory.
func Migrations() (fs.FS, error) {
	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("retrieving database migrations subtree: %w", err)
	}
	return subtree, nil
}

// MigrationResult reports the schema versions before and after Migrate.
type MigrationResult struct {
	From int32 `json:"from_version"`
	To   int32 `json:"to_version"`
}

// Migrate brings the storefront schema up to the newest embedded version.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) (*MigrationResult, error) {
	conn, err := pgx.Connect(ctx, DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, VersionTable)
	if err != nil {
		return nil, fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := Migrations()
	if err != nil {
		return nil, err
	}
	if err := m.LoadMigrations(subtree); err != nil {
		return nil, fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	to := int32(len(m.Migrations))
	if from == to {
		logger.Info().Msgf("database schema up to date, version %d", to)
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, to)
	}
	return &MigrationResult{From: from, To: to}, nil
}
