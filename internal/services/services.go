// package services defines interface Service for interacting with HTTP APIs
package services

import (
	"context"

	"github.com/duskriver/plrank/internal/models"
	"github.com/duskriver/plrank/internal/pager"
	"golang.org/x/oauth2"
)

// MaxAudioFeatureIDs is the per-call maximum of the audio-features endpoint.
const MaxAudioFeatureIDs = 100

// Service defines the capability set plrank needs from a music streaming
// provider: paginated playlist listing, paginated track listing, and batched
// audio-feature lookup.
type Service interface {
	// Authenticate performs token-based authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// PlaylistPage retrieves one page of the current user's playlists.
	// The empty cursor addresses the first page.
	PlaylistPage(ctx context.Context, cursor string) (pager.Page[models.Playlist], error)

	// PlaylistItemPage retrieves one page of a playlist's track listing in
	// server order. The empty cursor addresses the first page.
	PlaylistItemPage(ctx context.Context, playlistID, cursor string) (pager.Page[models.TrackRef], error)

	// AudioFeatures retrieves audio features for up to [MaxAudioFeatureIDs]
	// track IDs. The result is positional: an ID the service has no feature
	// data for yields a nil entry.
	AudioFeatures(ctx context.Context, trackIDs []string) ([]*models.FeatureVector, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Service for providers authenticated via an OAuth2
// authorization-code flow, used by the CLI auth command.
type OAuthService interface {
	Service

	// GetAuthURL returns the provider authorization URL for the given state token.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the OAuth2 config for the callback handler.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs a previously obtained token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}
