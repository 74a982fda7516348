package main

import (
	"context"
	"fmt"
	"os"

	"github.com/duskriver/plrank/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates a config.toml scaffold at the given path.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%w: %s already exists", shared.ErrInvalidArgument, configPath)
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Config scaffold written to %s\n\n", configPath)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Add your Spotify client_id and client_secret under [credentials.spotify]\n")
	r.writePlain("2. Run 'plrank auth' to authorize\n")
	r.writePlain("3. Run 'plrank rank' to profile your playlists\n")

	return nil
}
