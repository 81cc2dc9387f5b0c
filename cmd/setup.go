package main

import (
	"context"
	"os"

	"github.com/desertthunder/spotify-sync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the example config to --config when missing and migrates the transfer journal.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file exists, leaving it unchanged", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Config written to %s\n", configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.openJournal()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Transfer journal ready at %s\n", shared.ExpandPath(r.config.Database.Path))

	r.writePlainln("Next steps:")
	r.writePlain("1. Set %s and %s in your environment, .env or %s\n", shared.EnvClientID, shared.EnvClientSecret, configPath)
	r.writePlain("2. Run 'spotify-sync login <name>' for each account\n")
	return nil
}
