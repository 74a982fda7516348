// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/duskriver/plrank/internal/models"
	"github.com/duskriver/plrank/internal/pager"
)

// MockService is a configurable test double for services.Service.
//
// Unset function fields behave as empty results.
type MockService struct {
	AuthenticateFunc     func(ctx context.Context, credentials map[string]string) error
	PlaylistPageFunc     func(ctx context.Context, cursor string) (pager.Page[models.Playlist], error)
	PlaylistItemPageFunc func(ctx context.Context, playlistID, cursor string) (pager.Page[models.TrackRef], error)
	AudioFeaturesFunc    func(ctx context.Context, trackIDs []string) ([]*models.FeatureVector, error)
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, credentials)
	}
	return nil
}

func (m *MockService) PlaylistPage(ctx context.Context, cursor string) (pager.Page[models.Playlist], error) {
	if m.PlaylistPageFunc != nil {
		return m.PlaylistPageFunc(ctx, cursor)
	}
	return pager.Page[models.Playlist]{}, nil
}

func (m *MockService) PlaylistItemPage(ctx context.Context, playlistID, cursor string) (pager.Page[models.TrackRef], error) {
	if m.PlaylistItemPageFunc != nil {
		return m.PlaylistItemPageFunc(ctx, playlistID, cursor)
	}
	return pager.Page[models.TrackRef]{}, nil
}

func (m *MockService) AudioFeatures(ctx context.Context, trackIDs []string) ([]*models.FeatureVector, error) {
	if m.AudioFeaturesFunc != nil {
		return m.AudioFeaturesFunc(ctx, trackIDs)
	}
	return make([]*models.FeatureVector, len(trackIDs)), nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

// Vector builds a FeatureVector with every descriptor set to v.
func Vector(v float64) *models.FeatureVector {
	return &models.FeatureVector{
		Danceability:     v,
		Energy:           v,
		Loudness:         v,
		Speechiness:      v,
		Acousticness:     v,
		Instrumentalness: v,
		Liveness:         v,
		Valence:          v,
		Tempo:            v,
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
