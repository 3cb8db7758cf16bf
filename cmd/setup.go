package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/alryaz/go-music-browser/internal/shared"
	"github.com/alryaz/go-music-browser/internal/store"
)

// Setup creates the config file when missing and initializes the session store.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
	}

	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	if r.config.Store.Path == "" {
		r.writePlain("✓ Setup complete (session store disabled)\n")
		return nil
	}

	r.logger.Info("initializing session store", "path", r.config.Store.Path)

	db, err := shared.NewDatabase(r.config.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer db.Close()

	if _, err := store.NewSessionStore(db); err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	r.writePlain("✓ Setup complete\n")
	r.writePlain("Config: %s\n", configPath)
	r.writePlain("Session store: %s\n", r.config.Store.Path)
	return nil
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the session store",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}
