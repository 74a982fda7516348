package tasks

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/duskriver/plrank/internal/models"
	"github.com/duskriver/plrank/internal/pager"
	"github.com/duskriver/plrank/internal/shared"
	tu "github.com/duskriver/plrank/internal/testing"
)

func cursor(s string) *string { return &s }

func TestListPlaylists(t *testing.T) {
	service := &tu.MockService{
		PlaylistPageFunc: func(ctx context.Context, c string) (pager.Page[models.Playlist], error) {
			switch c {
			case "":
				return pager.Page[models.Playlist]{
					Items: []models.Playlist{
						{ID: "idA", Name: "A", Collaborative: true},
						{ID: "idB", Name: "B", Collaborative: false},
					},
					Next: cursor("page2"),
				}, nil
			case "page2":
				return pager.Page[models.Playlist]{
					Items: []models.Playlist{
						{ID: "idC", Name: "C", Collaborative: true},
					},
				}, nil
			default:
				return pager.Page[models.Playlist]{}, fmt.Errorf("unknown cursor %q", c)
			}
		},
	}
	engine := NewProfileEngine(service, shared.NewLogger(nil))

	t.Run("drains all pages", func(t *testing.T) {
		index, err := engine.ListPlaylists(context.Background(), false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(index.Keys(), []string{"A", "B", "C"}) {
			t.Errorf("expected [A B C], got %v", index.Keys())
		}
	})

	t.Run("collaborative filter keeps only flagged playlists", func(t *testing.T) {
		index, err := engine.ListPlaylists(context.Background(), true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(index.Keys(), []string{"A", "C"}) {
			t.Errorf("expected [A C], got %v", index.Keys())
		}
		if id, _ := index.Get("A"); id != "idA" {
			t.Errorf("expected A -> idA, got %s", id)
		}
		if id, _ := index.Get("C"); id != "idC" {
			t.Errorf("expected C -> idC, got %s", id)
		}
	})

	t.Run("same-named playlists collapse, last wins", func(t *testing.T) {
		dup := &tu.MockService{
			PlaylistPageFunc: func(ctx context.Context, c string) (pager.Page[models.Playlist], error) {
				return pager.Page[models.Playlist]{
					Items: []models.Playlist{
						{ID: "id1", Name: "Mix"},
						{ID: "id2", Name: "Other"},
						{ID: "id3", Name: "Mix"},
					},
				}, nil
			},
		}

		index, err := NewProfileEngine(dup, shared.NewLogger(nil)).ListPlaylists(context.Background(), false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(index.Keys(), []string{"Mix", "Other"}) {
			t.Errorf("expected [Mix Other], got %v", index.Keys())
		}
		if id, _ := index.Get("Mix"); id != "id3" {
			t.Errorf("expected last-wins id3, got %s", id)
		}
	})
}

func TestListTracks(t *testing.T) {
	service := &tu.MockService{
		PlaylistItemPageFunc: func(ctx context.Context, playlistID, c string) (pager.Page[models.TrackRef], error) {
			if playlistID != "p1" {
				return pager.Page[models.TrackRef]{}, fmt.Errorf("unknown playlist %q", playlistID)
			}
			if c == "" {
				return pager.Page[models.TrackRef]{
					Items: []models.TrackRef{{ID: "t1"}, {ID: "t2"}},
					Next:  cursor("page2"),
				}, nil
			}
			return pager.Page[models.TrackRef]{Items: []models.TrackRef{{ID: "t3"}}}, nil
		},
	}

	tracks, err := NewProfileEngine(service, shared.NewLogger(nil)).ListTracks(context.Background(), "p1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []models.TrackRef{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	if !reflect.DeepEqual(tracks, want) {
		t.Errorf("expected %v, got %v", want, tracks)
	}
}

func TestFetchFeatures(t *testing.T) {
	t.Run("partitions 250 refs into batches of 100", func(t *testing.T) {
		var batches [][]string
		service := &tu.MockService{
			AudioFeaturesFunc: func(ctx context.Context, ids []string) ([]*models.FeatureVector, error) {
				batches = append(batches, ids)
				features := make([]*models.FeatureVector, len(ids))
				for i := range features {
					features[i] = tu.Vector(0.5)
				}
				return features, nil
			},
		}

		refs := make([]models.TrackRef, 250)
		for i := range refs {
			refs[i] = models.TrackRef{ID: fmt.Sprintf("t%03d", i)}
		}

		features, err := NewProfileEngine(service, shared.NewLogger(nil)).FetchFeatures(context.Background(), refs)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(batches) != 3 {
			t.Fatalf("expected exactly 3 fetch calls, got %d", len(batches))
		}
		if len(batches[0]) != 100 || len(batches[1]) != 100 || len(batches[2]) != 50 {
			t.Errorf("expected batch sizes 100/100/50, got %d/%d/%d",
				len(batches[0]), len(batches[1]), len(batches[2]))
		}
		if len(features) != 250 {
			t.Errorf("expected 250 feature entries, got %d", len(features))
		}
		if batches[0][0] != "t000" || batches[2][49] != "t249" {
			t.Error("expected batches to preserve ref order")
		}
	})

	t.Run("filters refs without IDs", func(t *testing.T) {
		var got []string
		service := &tu.MockService{
			AudioFeaturesFunc: func(ctx context.Context, ids []string) ([]*models.FeatureVector, error) {
				got = ids
				return make([]*models.FeatureVector, len(ids)), nil
			},
		}

		refs := []models.TrackRef{{ID: "t1"}, {}, {ID: "t2"}, {}}
		if _, err := NewProfileEngine(service, shared.NewLogger(nil)).FetchFeatures(context.Background(), refs); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(got, []string{"t1", "t2"}) {
			t.Errorf("expected [t1 t2], got %v", got)
		}
	})

	t.Run("no usable IDs means no fetch calls", func(t *testing.T) {
		service := &tu.MockService{
			AudioFeaturesFunc: func(ctx context.Context, ids []string) ([]*models.FeatureVector, error) {
				t.Fatal("no fetch expected")
				return nil, nil
			},
		}

		features, err := NewProfileEngine(service, shared.NewLogger(nil)).FetchFeatures(context.Background(), []models.TrackRef{{}, {}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if features != nil {
			t.Errorf("expected nil features, got %v", features)
		}
	})
}

// runService fakes a two-playlist library with the given per-playlist
// danceability values.
func runService(byPlaylist map[string][]float64, order []string) *tu.MockService {
	return &tu.MockService{
		PlaylistPageFunc: func(ctx context.Context, c string) (pager.Page[models.Playlist], error) {
			page := pager.Page[models.Playlist]{}
			for i, name := range order {
				page.Items = append(page.Items, models.Playlist{ID: fmt.Sprintf("id%d", i), Name: name})
			}
			return page, nil
		},
		PlaylistItemPageFunc: func(ctx context.Context, playlistID, c string) (pager.Page[models.TrackRef], error) {
			page := pager.Page[models.TrackRef]{}
			for i, name := range order {
				if playlistID == fmt.Sprintf("id%d", i) {
					for j := range byPlaylist[name] {
						page.Items = append(page.Items, models.TrackRef{ID: fmt.Sprintf("%s-t%d", name, j)})
					}
				}
			}
			return page, nil
		},
		AudioFeaturesFunc: func(ctx context.Context, ids []string) ([]*models.FeatureVector, error) {
			features := make([]*models.FeatureVector, 0, len(ids))
			for _, id := range ids {
				for _, name := range order {
					for j, v := range byPlaylist[name] {
						if id == fmt.Sprintf("%s-t%d", name, j) {
							f := tu.Vector(0)
							f.Danceability = v
							features = append(features, f)
						}
					}
				}
			}
			return features, nil
		},
	}
}

func TestRun(t *testing.T) {
	t.Run("end to end averages per playlist", func(t *testing.T) {
		service := runService(map[string][]float64{
			"Upbeat": {0.5, 0.7},
			"Mellow": {0.2, 0.4},
		}, []string{"Upbeat", "Mellow"})

		result, err := NewProfileEngine(service, shared.NewLogger(nil)).Run(context.Background(), nil, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !reflect.DeepEqual(result.Profiles.Keys(), []string{"Upbeat", "Mellow"}) {
			t.Fatalf("expected profiles in fetch order, got %v", result.Profiles.Keys())
		}

		upbeat, _ := result.Profiles.Get("Upbeat")
		if upbeat.Danceability != 0.6 {
			t.Errorf("expected Upbeat danceability 0.60, got %v", upbeat.Danceability)
		}
		mellow, _ := result.Profiles.Get("Mellow")
		if mellow.Danceability != 0.3 {
			t.Errorf("expected Mellow danceability 0.30, got %v", mellow.Danceability)
		}
		if len(result.Skipped) != 0 {
			t.Errorf("expected no skipped playlists, got %v", result.Skipped)
		}
	})

	t.Run("empty playlist is skipped, run continues", func(t *testing.T) {
		service := runService(map[string][]float64{
			"Empty": {},
			"Full":  {0.8},
		}, []string{"Empty", "Full"})

		result, err := NewProfileEngine(service, shared.NewLogger(nil)).Run(context.Background(), nil, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Profiles.Len() != 1 {
			t.Fatalf("expected 1 profile, got %d", result.Profiles.Len())
		}
		if _, ok := result.Profiles.Get("Empty"); ok {
			t.Error("expected Empty to be excluded")
		}
		if len(result.Skipped) != 1 || result.Skipped[0].Name != "Empty" {
			t.Fatalf("expected Empty to be skipped, got %v", result.Skipped)
		}
		if !errors.Is(result.Skipped[0].Reason, shared.ErrNoFeatures) {
			t.Errorf("expected ErrNoFeatures diagnostic, got %v", result.Skipped[0].Reason)
		}
	})

	t.Run("malformed features skip the playlist only", func(t *testing.T) {
		service := runService(map[string][]float64{
			"Good": {0.5},
			"Bad":  {0.5},
		}, []string{"Bad", "Good"})
		inner := service.AudioFeaturesFunc
		service.AudioFeaturesFunc = func(ctx context.Context, ids []string) ([]*models.FeatureVector, error) {
			for _, id := range ids {
				if id == "Bad-t0" {
					return nil, fmt.Errorf("%w: tempo", shared.ErrMalformedFeatures)
				}
			}
			return inner(ctx, ids)
		}

		result, err := NewProfileEngine(service, shared.NewLogger(nil)).Run(context.Background(), nil, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := result.Profiles.Get("Good"); !ok {
			t.Error("expected Good to survive")
		}
		if len(result.Skipped) != 1 || result.Skipped[0].Name != "Bad" {
			t.Errorf("expected Bad to be skipped, got %v", result.Skipped)
		}
	})

	t.Run("transport errors abort the run", func(t *testing.T) {
		service := &tu.MockService{
			PlaylistPageFunc: func(ctx context.Context, c string) (pager.Page[models.Playlist], error) {
				return pager.Page[models.Playlist]{}, shared.ErrAPIRequest
			},
		}

		_, err := NewProfileEngine(service, shared.NewLogger(nil)).Run(context.Background(), nil, false)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("missing service", func(t *testing.T) {
		_, err := NewProfileEngine(nil, shared.NewLogger(nil)).Run(context.Background(), nil, false)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("emits progress updates", func(t *testing.T) {
		service := runService(map[string][]float64{"Only": {0.5}}, []string{"Only"})
		prog := make(chan ProgressUpdate, 16)

		_, err := NewProfileEngine(service, shared.NewLogger(nil)).Run(context.Background(), prog, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(prog)

		phases := map[Phase]bool{}
		for update := range prog {
			phases[update.Phase] = true
			if update.Message == "" {
				t.Error("expected progress messages to be populated")
			}
		}
		for _, phase := range []Phase{FetchPlaylists, FetchTracks, FetchFeatures, Aggregate} {
			if !phases[phase] {
				t.Errorf("expected a %s update", phase)
			}
		}
	})
}
