// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/avast/retry-go"
	"github.com/duskriver/plrank/internal/models"
	"github.com/duskriver/plrank/internal/pager"
	"github.com/duskriver/plrank/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify allows ~180 requests per rolling 30s window; stay well under it.
	spotifyRequestsPerSecond = 5
)

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type spotifyTrackTotal struct {
	Total int `json:"total"`
}

// spotifyPlaylist is a simplified playlist object as returned by /me/playlists.
type spotifyPlaylist struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Collaborative bool              `json:"collaborative"`
	Public        bool              `json:"public"`
	Owner         spotifyOwner      `json:"owner"`
	Tracks        spotifyTrackTotal `json:"tracks"`
}

// spotifyPlaylistPage is a paginated response of playlists. Next carries the
// absolute URL of the following page, null on the last page.
type spotifyPlaylistPage struct {
	Items []spotifyPlaylist `json:"items"`
	Next  *string           `json:"next"`
}

// spotifyPlaylistItem wraps a track within a playlist context. Track is null
// for removed entries; Track.ID is null for local files.
type spotifyPlaylistItem struct {
	Track *struct {
		ID *string `json:"id"`
	} `json:"track"`
}

type spotifyPlaylistItemPage struct {
	Items []spotifyPlaylistItem `json:"items"`
	Next  *string               `json:"next"`
}

// spotifyAudioFeatures decodes one audio-features object. The descriptor
// fields are pointers so a response missing a descriptor is detectable
// instead of silently reading as zero.
type spotifyAudioFeatures struct {
	ID               string   `json:"id"`
	Danceability     *float64 `json:"danceability"`
	Energy           *float64 `json:"energy"`
	Loudness         *float64 `json:"loudness"`
	Speechiness      *float64 `json:"speechiness"`
	Acousticness     *float64 `json:"acousticness"`
	Instrumentalness *float64 `json:"instrumentalness"`
	Liveness         *float64 `json:"liveness"`
	Valence          *float64 `json:"valence"`
	Tempo            *float64 `json:"tempo"`
}

// vector validates the wire object and converts it to a [models.FeatureVector].
func (w spotifyAudioFeatures) vector() (*models.FeatureVector, error) {
	fields := map[string]*float64{
		"danceability":     w.Danceability,
		"energy":           w.Energy,
		"loudness":         w.Loudness,
		"speechiness":      w.Speechiness,
		"acousticness":     w.Acousticness,
		"instrumentalness": w.Instrumentalness,
		"liveness":         w.Liveness,
		"valence":          w.Valence,
		"tempo":            w.Tempo,
	}
	for _, name := range models.Descriptors {
		if fields[name] == nil {
			return nil, fmt.Errorf("%w: %s (track %s)", shared.ErrMalformedFeatures, name, w.ID)
		}
	}

	return &models.FeatureVector{
		Danceability:     *w.Danceability,
		Energy:           *w.Energy,
		Loudness:         *w.Loudness,
		Speechiness:      *w.Speechiness,
		Acousticness:     *w.Acousticness,
		Instrumentalness: *w.Instrumentalness,
		Liveness:         *w.Liveness,
		Valence:          *w.Valence,
		Tempo:            *w.Tempo,
	}, nil
}

// SpotifyService implements the [Service] interface for the Spotify Web API.
//
// Uses [oauth2] for authentication with automatic token refresh and a
// [rate.Limiter] so the client, not its callers, owns request pacing.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(spotifyRequestsPerSecond), 1),
	}, nil
}

// Authenticate performs authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		return s.OAuthenticate(ctx, &oauth2.Token{AccessToken: accessToken})
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("failed to exchange auth code: %w", err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate installs the token and builds the refreshing HTTP client.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrNotAuthenticated)
	}
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 config for the callback handler.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetHTTPClient replaces the HTTP client, bypassing OAuth transport. Test hook.
func (s *SpotifyService) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// errTransient marks statuses worth retrying (429, 5xx).
var errTransient = fmt.Errorf("transient API error")

// doRequest performs an authenticated, rate-limited GET against the Spotify API.
//
// apiURL must be absolute. Transient failures (429, 5xx) are retried with
// backoff; this is the only layer of the program that retries anything.
func (s *SpotifyService) doRequest(ctx context.Context, apiURL string, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	err := retry.Do(
		func() error {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusUnauthorized:
				return shared.ErrTokenExpired
			case resp.StatusCode == http.StatusNotFound:
				return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, apiURL)
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("%w: status %d", errTransient, resp.StatusCode)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
			}

			if result != nil {
				if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
			}

			return nil
		},
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errTransient)
		}),
	)
	if err != nil && errors.Is(err, errTransient) {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return err
}

// PlaylistPage retrieves one page of the current user's playlists.
//
// The cursor is the absolute next-page URL returned by the previous page;
// the empty cursor addresses the first page.
func (s *SpotifyService) PlaylistPage(ctx context.Context, cursor string) (pager.Page[models.Playlist], error) {
	apiURL := cursor
	if apiURL == "" {
		apiURL = spotifyBaseURL + "/me/playlists?limit=50"
	}

	var response spotifyPlaylistPage
	if err := s.doRequest(ctx, apiURL, &response); err != nil {
		return pager.Page[models.Playlist]{}, err
	}

	page := pager.Page[models.Playlist]{
		Items: make([]models.Playlist, 0, len(response.Items)),
		Next:  response.Next,
	}
	for _, item := range response.Items {
		page.Items = append(page.Items, models.Playlist{
			ID:            item.ID,
			Name:          item.Name,
			Collaborative: item.Collaborative,
			Public:        item.Public,
			TrackCount:    item.Tracks.Total,
			Owner:         item.Owner.DisplayName,
		})
	}

	return page, nil
}

// PlaylistItemPage retrieves one page of a playlist's track listing.
//
// Entries without a track ID (local files, removed tracks) map to a TrackRef
// with an empty ID so callers can filter them before feature lookup.
func (s *SpotifyService) PlaylistItemPage(ctx context.Context, playlistID, cursor string) (pager.Page[models.TrackRef], error) {
	apiURL := cursor
	if apiURL == "" {
		apiURL = fmt.Sprintf("%s/playlists/%s/tracks?fields=%s&limit=100",
			spotifyBaseURL, playlistID, url.QueryEscape("items(track(id)),next"))
	}

	var response spotifyPlaylistItemPage
	if err := s.doRequest(ctx, apiURL, &response); err != nil {
		return pager.Page[models.TrackRef]{}, err
	}

	page := pager.Page[models.TrackRef]{
		Items: make([]models.TrackRef, 0, len(response.Items)),
		Next:  response.Next,
	}
	for _, item := range response.Items {
		ref := models.TrackRef{}
		if item.Track != nil && item.Track.ID != nil {
			ref.ID = *item.Track.ID
		}
		page.Items = append(page.Items, ref)
	}

	return page, nil
}

// AudioFeatures retrieves audio features for up to [MaxAudioFeatureIDs] track IDs.
//
// The result is positional: Spotify returns null for IDs it has no feature
// data for, preserved here as nil entries. An object missing a descriptor
// field fails with [shared.ErrMalformedFeatures] rather than entering an
// average as zero.
func (s *SpotifyService) AudioFeatures(ctx context.Context, trackIDs []string) ([]*models.FeatureVector, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidArgument)
	}
	if len(trackIDs) > MaxAudioFeatureIDs {
		return nil, fmt.Errorf("%w: maximum %d track IDs allowed", shared.ErrInvalidArgument, MaxAudioFeatureIDs)
	}

	apiURL := fmt.Sprintf("%s/audio-features?ids=%s",
		spotifyBaseURL, url.QueryEscape(strings.Join(trackIDs, ",")))

	var response struct {
		AudioFeatures []*spotifyAudioFeatures `json:"audio_features"`
	}
	if err := s.doRequest(ctx, apiURL, &response); err != nil {
		return nil, err
	}

	vectors := make([]*models.FeatureVector, 0, len(response.AudioFeatures))
	for _, wire := range response.AudioFeatures {
		if wire == nil {
			vectors = append(vectors, nil)
			continue
		}
		vector, err := wire.vector()
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vector)
	}

	return vectors, nil
}
