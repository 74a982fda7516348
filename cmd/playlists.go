package main

import (
	"context"
	"fmt"

	"github.com/duskriver/plrank/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists lists the current user's playlists as a name → id index.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	collabOnly := cmd.Bool("collab")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.ensureAuthenticated(ctx); err != nil {
		return err
	}

	r.logger.Info("listing playlists", "collab_only", collabOnly)

	index, err := r.engine.ListPlaylists(ctx, collabOnly)
	if err != nil {
		if reauthed, authErr := r.handleSpotifyAuthError(ctx, err); reauthed {
			if authErr != nil {
				return authErr
			}
			if index, err = r.engine.ListPlaylists(ctx, collabOnly); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	if useJSON {
		type entry struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		}
		entries := make([]entry, 0, index.Len())
		for _, name := range index.Keys() {
			id, _ := index.Get(name)
			entries = append(entries, entry{Name: name, ID: id})
		}
		return r.writeJSON(entries, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", index.Len())
	for i, name := range index.Keys() {
		id, _ := index.Get(name)
		r.writePlain("%d. %s\n", i+1, name)
		r.writePlain("   ID: %s\n", id)
	}

	return nil
}
