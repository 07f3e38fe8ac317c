package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/desertthunder/songlist/internal/formatter"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/desertthunder/songlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the embedded template first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	config, err := shared.Load(configPath)
	if err != nil {
		return err
	}
	r.config, r.configPath = config, configPath

	r.logger.Info("initializing database", "driver", config.Database.Driver, "url", config.Database.URL)

	_, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	r.logger.Infof("setup complete for database: %v", config.Database.URL)
	return r.writePlain("%s\n", formatter.Success("✓ Database ready"))
}

// SetupRollback rolls back the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	return r.withDatabase(cmd, func(config *shared.Config) error {
		db, dialect, err := openRaw(config)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := shared.RollbackMigration(db, dialect); err != nil {
			return err
		}
		return r.writePlain("%s\n", formatter.Success("✓ Rolled back latest migration"))
	})
}

// SetupReset drops and recreates the collection tables.
func (r *Runner) SetupReset(ctx context.Context, cmd *cli.Command) error {
	return r.withDatabase(cmd, func(config *shared.Config) error {
		db, dialect, err := openRaw(config)
		if err != nil {
			return err
		}
		defer db.Close()

		r.logger.Warn("resetting database", "url", config.Database.URL)
		if err := shared.ResetDatabase(db, dialect); err != nil {
			return err
		}
		return r.writePlain("%s\n", formatter.Success("✓ Database reset"))
	})
}

// SetupTruncate deletes every record from the selected collection(s).
func (r *Runner) SetupTruncate(ctx context.Context, cmd *cli.Command) error {
	collections, err := parseCollections(cmd.String("collection"))
	if err != nil {
		return err
	}

	return r.withDatabase(cmd, func(config *shared.Config) error {
		store, closeStore, err := r.openStore(config)
		if err != nil {
			return err
		}
		defer closeStore()

		removed, err := tasks.NewSeeder(store, nil).Truncate(ctx, collections...)
		if err != nil {
			return err
		}

		for _, c := range collections {
			r.logger.Info("truncated collection", "table", c.Table(), "deleted", removed[c])
			r.writePlain("%s %d records removed from %s\n", formatter.Success("✓"), removed[c], c.Table())
		}
		return nil
	})
}

// SetupConfig writes the example configuration to --output.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("%s\n", formatter.Success("✓ Configuration written to "+path))
	r.writePlainln("Next steps:")
	r.writePlain("1. Set auth.username, auth.password and auth.jwt_secret (or SONGLIST_USERNAME, SONGLIST_PASSWORD, JWT_SECRET)\n")
	r.writePlain("2. Run 'songlist setup database -c %s'\n", path)
	return nil
}

func (r *Runner) withDatabase(cmd *cli.Command, fn func(config *shared.Config) error) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	return fn(config)
}

// parseCollections maps songs, todo or all to the collections they name.
func parseCollections(name string) ([]models.Collection, error) {
	if strings.EqualFold(strings.TrimSpace(name), "all") || name == "" {
		return models.Collections, nil
	}
	c, err := models.ParseCollection(name)
	if err != nil {
		return nil, err
	}
	return []models.Collection{c}, nil
}
