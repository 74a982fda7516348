package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/duskriver/plrank/internal/models"
	"github.com/duskriver/plrank/internal/pager"
	"github.com/duskriver/plrank/internal/services"
	"github.com/duskriver/plrank/internal/shared"
)

// SkippedPlaylist records a playlist excluded from the report and why.
type SkippedPlaylist struct {
	Name   string
	Reason error
}

// RunResult contains everything a profiling run produced.
type RunResult struct {
	// Profiles maps playlist name to averaged feature vector, in fetch order.
	Profiles *models.OrderedMap[models.FeatureVector]
	// Skipped lists playlists excluded from Profiles with their diagnostics.
	Skipped []SkippedPlaylist
}

// ProfileEngine orchestrates playlist, track, and audio-feature collection
// through a [services.Service] and reduces the results to per-playlist
// feature averages.
//
// All collection is sequential; the service owns request pacing.
type ProfileEngine struct {
	service services.Service
	logger  *log.Logger
}

// NewProfileEngine creates a ProfileEngine backed by the given service.
func NewProfileEngine(service services.Service, logger *log.Logger) *ProfileEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ProfileEngine{service: service, logger: logger}
}

// ListPlaylists drains all of the current user's playlists into an ordered
// name → id mapping.
//
// When collabOnly is set, only playlists flagged collaborative are kept.
// Two playlists sharing a display name collapse to one entry, the later one
// in fetch order winning. That mirrors the upstream behavior; names are not
// disambiguated.
func (e *ProfileEngine) ListPlaylists(ctx context.Context, collabOnly bool) (*models.OrderedMap[string], error) {
	first, err := e.service.PlaylistPage(ctx, "")
	if err != nil {
		return nil, err
	}

	playlists, err := pager.Drain(ctx, first, func(ctx context.Context, cursor string) (pager.Page[models.Playlist], error) {
		return e.service.PlaylistPage(ctx, cursor)
	})
	if err != nil {
		return nil, err
	}

	index := models.NewOrderedMap[string]()
	for _, playlist := range playlists {
		if playlist.Collaborative || !collabOnly {
			index.Set(playlist.Name, playlist.ID)
		}
	}

	return index, nil
}

// ListTracks drains a playlist's full track listing in server order.
func (e *ProfileEngine) ListTracks(ctx context.Context, playlistID string) ([]models.TrackRef, error) {
	first, err := e.service.PlaylistItemPage(ctx, playlistID, "")
	if err != nil {
		return nil, err
	}

	return pager.Drain(ctx, first, func(ctx context.Context, cursor string) (pager.Page[models.TrackRef], error) {
		return e.service.PlaylistItemPage(ctx, playlistID, cursor)
	})
}

// FetchFeatures fetches audio features for the given track refs.
//
// Refs without an ID (local or unavailable tracks) are filtered out first.
// The remaining IDs are partitioned into batches of
// [services.MaxAudioFeatureIDs], one service call per batch, and the results
// concatenate in batch order. Nil entries (IDs the service had no features
// for) are preserved for [Average] to reject.
func (e *ProfileEngine) FetchFeatures(ctx context.Context, refs []models.TrackRef) ([]*models.FeatureVector, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	features := make([]*models.FeatureVector, 0, len(ids))
	for start := 0; start < len(ids); start += services.MaxAudioFeatureIDs {
		end := min(start+services.MaxAudioFeatureIDs, len(ids))

		batch, err := e.service.AudioFeatures(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("audio features batch %d-%d: %w", start+1, end, err)
		}
		features = append(features, batch...)
	}

	return features, nil
}

// Run executes the full pipeline: playlists, then per playlist tracks,
// features, and average.
//
// Transport and auth errors abort the run. A playlist whose features are
// empty, missing, or malformed is excluded from the result with a logged
// diagnostic and the run continues; it simply never appears in the report.
func (e *ProfileEngine) Run(ctx context.Context, prog chan<- ProgressUpdate, collabOnly bool) (*RunResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(prog, fetchPlaylistsUpdate())
	index, err := e.ListPlaylists(ctx, collabOnly)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	e.logger.Info("fetched playlists", "count", index.Len(), "collab_only", collabOnly)

	result := &RunResult{Profiles: models.NewOrderedMap[models.FeatureVector]()}
	total := index.Len()

	for i, name := range index.Keys() {
		id, _ := index.Get(name)

		sendProgress(prog, fetchTracksUpdate(i+1, total, name))
		tracks, err := e.ListTracks(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("listing tracks of %q: %w", name, err)
		}

		sendProgress(prog, fetchFeaturesUpdate(i+1, total, name, len(tracks)))
		features, err := e.FetchFeatures(ctx, tracks)
		if err != nil {
			if errors.Is(err, shared.ErrMalformedFeatures) {
				e.logger.Warn("skipping playlist", "playlist", name, "reason", err)
				result.Skipped = append(result.Skipped, SkippedPlaylist{Name: name, Reason: err})
				continue
			}
			return nil, err
		}

		sendProgress(prog, aggregateUpdate(i+1, total, name))
		average, err := Average(features)
		if err != nil {
			e.logger.Warn("skipping playlist", "playlist", name, "reason", err)
			result.Skipped = append(result.Skipped, SkippedPlaylist{Name: name, Reason: err})
			continue
		}

		result.Profiles.Set(name, average)
	}

	return result, nil
}
