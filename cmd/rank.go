package main

import (
	"context"

	"github.com/duskriver/plrank/internal/formatter"
	"github.com/duskriver/plrank/internal/report"
	"github.com/duskriver/plrank/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Rank runs the full profiling pipeline and renders one ranking table per descriptor.
func (r *Runner) Rank(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	topN := int(cmd.Int("top"))
	if topN <= 0 {
		topN = r.config.Rank.TopN
	}
	if topN <= 0 {
		topN = report.DefaultTopN
	}

	collabOnly := cmd.Bool("collab") || r.config.Rank.CollaborativeOnly

	if err := r.ensureAuthenticated(ctx); err != nil {
		return err
	}

	result, err := r.profile(ctx, collabOnly)
	if err != nil {
		if reauthed, authErr := r.handleSpotifyAuthError(ctx, err); reauthed {
			if authErr != nil {
				return authErr
			}
			if result, err = r.profile(ctx, collabOnly); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	for _, skipped := range result.Skipped {
		r.writePlain("⚠ Skipped %q: %v\n", skipped.Name, skipped.Reason)
	}

	if result.Profiles.Len() == 0 {
		return r.writePlain("No playlists with audio features found. Nothing to rank.\n")
	}

	rankings := report.Rank(result.Profiles, topN)

	if cmd.Bool("save") {
		base := cmd.String("output")

		csvFile, err := formatter.WriteCSVExport(rankings, base)
		if err != nil {
			return err
		}
		mdFile, err := formatter.WriteMarkdownExport(rankings, base)
		if err != nil {
			return err
		}

		r.logger.Info("rankings saved", "csv", csvFile, "markdown", mdFile)
		r.writePlain("✓ Rankings saved to %s and %s\n", csvFile, mdFile)
	}

	if useJSON {
		return r.writeJSON(rankings, pretty)
	}

	return report.Render(r.output, rankings)
}

// profile drives the engine with a progress channel rendered to the output writer.
func (r *Runner) profile(ctx context.Context, collabOnly bool) (*tasks.RunResult, error) {
	prog := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range prog {
			if update.Total > 0 {
				r.writePlain("→ [%d/%d] %s\n", update.Step, update.Total, update.Message)
			} else {
				r.writePlain("→ %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Run(ctx, prog, collabOnly)
	close(prog)
	<-done

	if err != nil {
		return nil, err
	}

	r.logger.Info("profiling complete",
		"profiled", result.Profiles.Len(),
		"skipped", len(result.Skipped))

	if len(result.Skipped) > 0 {
		for _, skipped := range result.Skipped {
			r.logger.Warn("playlist excluded from report", "playlist", skipped.Name, "reason", skipped.Reason)
		}
	}

	return result, nil
}
