package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the default configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if err := shared.WriteConfigFile(path, cmd.Bool("force")); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s already exists, use --force to overwrite", shared.ErrInvalidArgument, path)
		}
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	return nil
}

// SetupDatabase initializes the database, runs migrations and creates the library directory.
// With --rollback it reverts the newest applied migration instead.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("rollback") {
		return r.rollbackDatabase()
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	if err := os.MkdirAll(r.config.Library.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)

	applied := 0
	r.writePlain("✓ Database ready: %s\n", r.config.Database.Path)
	for _, s := range states {
		if !s.Applied {
			r.writePlain("  %s  pending\n", s.Migration)
			continue
		}
		applied++
		r.writePlain("  %s  applied %s\n", s.Migration, s.AppliedAt.Local().Format(time.DateTime))
	}
	r.writePlain("  Migrations applied: %d/%d\n", applied, len(states))
	r.writePlain("✓ Library directory: %s\n", r.config.Library.Dir)
	return nil
}

// rollbackDatabase opens the database without migrating it and reverts the newest migration.
func (r *Runner) rollbackDatabase() error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	migration, err := shared.RollbackMigration(db)
	if err != nil {
		return err
	}

	r.logger.Warn("migration rolled back", "version", migration.Version, "name", migration.Name)
	r.writePlain("✓ Rolled back migration %s\n", migration)
	r.writePlain("  Run any command or setup database to apply it again.\n")
	return nil
}
