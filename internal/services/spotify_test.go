package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/duskriver/plrank/internal/shared"
	tu "github.com/duskriver/plrank/internal/testing"
	"golang.org/x/oauth2"
)

func newTestService(t *testing.T, handler func(req *http.Request) (*http.Response, error)) *SpotifyService {
	t.Helper()

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.token = &oauth2.Token{AccessToken: "test_access_token"}
	srv.SetHTTPClient(&http.Client{Transport: &tu.MockRoundTripper{RoundTripFunc: handler}})
	return srv
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("with valid credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("missing client id", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "s"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("missing client secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "c"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("GetAuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
	})

	t.Run("requests fail before authentication", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.PlaylistPage(context.Background(), "")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("PlaylistPage", func(t *testing.T) {
		t.Run("first page and cursor follow", func(t *testing.T) {
			var requested []string
			srv := newTestService(t, func(req *http.Request) (*http.Response, error) {
				requested = append(requested, req.URL.String())
				if strings.Contains(req.URL.RawQuery, "offset=50") {
					return jsonResponse(200, `{"items": [{"id": "p3", "name": "Third", "collaborative": true}], "next": null}`), nil
				}
				return jsonResponse(200, `{
					"items": [
						{"id": "p1", "name": "First", "collaborative": false, "public": true, "owner": {"display_name": "me"}, "tracks": {"total": 12}},
						{"id": "p2", "name": "Second", "collaborative": true}
					],
					"next": "https://api.spotify.com/v1/me/playlists?offset=50&limit=50"
				}`), nil
			})

			page, err := srv.PlaylistPage(context.Background(), "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(page.Items) != 2 {
				t.Fatalf("expected 2 playlists, got %d", len(page.Items))
			}
			if page.Items[0].Name != "First" || page.Items[0].TrackCount != 12 || page.Items[0].Owner != "me" {
				t.Errorf("unexpected first playlist: %+v", page.Items[0])
			}
			if !page.Items[1].Collaborative {
				t.Error("expected second playlist to be collaborative")
			}
			if page.Next == nil {
				t.Fatal("expected next cursor")
			}

			next, err := srv.PlaylistPage(context.Background(), *page.Next)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if next.Next != nil {
				t.Error("expected final page to have no next cursor")
			}
			if len(next.Items) != 1 || next.Items[0].ID != "p3" {
				t.Errorf("unexpected final page: %+v", next.Items)
			}
			if !strings.HasPrefix(requested[0], spotifyBaseURL+"/me/playlists") {
				t.Errorf("unexpected first page URL: %s", requested[0])
			}
		})

		t.Run("expired token surfaces as ErrTokenExpired", func(t *testing.T) {
			srv := newTestService(t, func(req *http.Request) (*http.Response, error) {
				return jsonResponse(401, `{"error": {"status": 401}}`), nil
			})

			_, err := srv.PlaylistPage(context.Background(), "")
			if !errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("expected ErrTokenExpired, got %v", err)
			}
		})

		t.Run("retries transient errors", func(t *testing.T) {
			calls := 0
			srv := newTestService(t, func(req *http.Request) (*http.Response, error) {
				calls++
				if calls < 3 {
					return jsonResponse(503, `{}`), nil
				}
				return jsonResponse(200, `{"items": [], "next": null}`), nil
			})

			if _, err := srv.PlaylistPage(context.Background(), ""); err != nil {
				t.Fatalf("expected success after retries, got %v", err)
			}
			if calls != 3 {
				t.Errorf("expected 3 attempts, got %d", calls)
			}
		})

		t.Run("does not retry client errors", func(t *testing.T) {
			calls := 0
			srv := newTestService(t, func(req *http.Request) (*http.Response, error) {
				calls++
				return jsonResponse(403, `{}`), nil
			})

			_, err := srv.PlaylistPage(context.Background(), "")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if calls != 1 {
				t.Errorf("expected a single attempt, got %d", calls)
			}
		})
	})

	t.Run("PlaylistItemPage", func(t *testing.T) {
		t.Run("maps missing track IDs to empty refs", func(t *testing.T) {
			srv := newTestService(t, func(req *http.Request) (*http.Response, error) {
				if !strings.Contains(req.URL.Path, "/playlists/p1/tracks") {
					return nil, fmt.Errorf("unexpected path %s", req.URL.Path)
				}
				return jsonResponse(200, `{
					"items": [
						{"track": {"id": "t1"}},
						{"track": {"id": null}},
						{"track": null},
						{"track": {"id": "t2"}}
					],
					"next": null
				}`), nil
			})

			page, err := srv.PlaylistItemPage(context.Background(), "p1", "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(page.Items) != 4 {
				t.Fatalf("expected 4 refs, got %d", len(page.Items))
			}
			ids := []string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID, page.Items[3].ID}
			want := []string{"t1", "", "", "t2"}
			for i := range want {
				if ids[i] != want[i] {
					t.Errorf("ref %d: expected %q, got %q", i, want[i], ids[i])
				}
			}
		})
	})

	t.Run("AudioFeatures", func(t *testing.T) {
		featureBody := func(id string, tempo float64) string {
			return fmt.Sprintf(`{"id": %q, "danceability": 0.5, "energy": 0.6, "loudness": -7.1,
				"speechiness": 0.04, "acousticness": 0.2, "instrumentalness": 0.0,
				"liveness": 0.1, "valence": 0.3, "tempo": %g}`, id, tempo)
		}

		t.Run("decodes features and preserves null entries", func(t *testing.T) {
			srv := newTestService(t, func(req *http.Request) (*http.Response, error) {
				body := fmt.Sprintf(`{"audio_features": [%s, null, %s]}`,
					featureBody("t1", 120), featureBody("t2", 97.5))
				return jsonResponse(200, body), nil
			})

			vectors, err := srv.AudioFeatures(context.Background(), []string{"t1", "gone", "t2"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(vectors) != 3 {
				t.Fatalf("expected 3 entries, got %d", len(vectors))
			}
			if vectors[0] == nil || vectors[0].Tempo != 120 {
				t.Errorf("unexpected first vector: %+v", vectors[0])
			}
			if vectors[1] != nil {
				t.Error("expected nil entry for unknown ID")
			}
			if vectors[2] == nil || vectors[2].Tempo != 97.5 {
				t.Errorf("unexpected third vector: %+v", vectors[2])
			}
		})

		t.Run("missing descriptor fails loudly", func(t *testing.T) {
			srv := newTestService(t, func(req *http.Request) (*http.Response, error) {
				// no tempo field
				return jsonResponse(200, `{"audio_features": [{"id": "t1", "danceability": 0.5,
					"energy": 0.6, "loudness": -7.1, "speechiness": 0.04, "acousticness": 0.2,
					"instrumentalness": 0.0, "liveness": 0.1, "valence": 0.3}]}`), nil
			})

			_, err := srv.AudioFeatures(context.Background(), []string{"t1"})
			if !errors.Is(err, shared.ErrMalformedFeatures) {
				t.Errorf("expected ErrMalformedFeatures, got %v", err)
			}
			if err == nil || !strings.Contains(err.Error(), "tempo") {
				t.Errorf("expected error to name the missing descriptor, got %v", err)
			}
		})

		t.Run("rejects oversized batches", func(t *testing.T) {
			srv := newTestService(t, func(req *http.Request) (*http.Response, error) {
				t.Fatal("no request expected")
				return nil, nil
			})

			ids := make([]string, MaxAudioFeatureIDs+1)
			for i := range ids {
				ids[i] = fmt.Sprintf("t%d", i)
			}

			if _, err := srv.AudioFeatures(context.Background(), ids); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("rejects empty batches", func(t *testing.T) {
			srv := newTestService(t, func(req *http.Request) (*http.Response, error) {
				t.Fatal("no request expected")
				return nil, nil
			})

			if _, err := srv.AudioFeatures(context.Background(), nil); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})
}
