// Package services defines the [Service] interface for music streaming providers and implements it for Spotify.
//
// # Service Interface
//
// The interface is the exact capability set the ranking pipeline needs:
// paginated playlist listing, paginated playlist-item listing, and batched
// audio-feature lookup. Everything above this boundary is testable with a
// fake implementation and no network access.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
//
// The [oauth2] client refreshes expired access tokens using the stored
// refresh token. Pagination cursors are the absolute next-page URLs Spotify
// returns, so a page is never re-fetched and no offset arithmetic leaks out
// of this package.
//
// Request pacing and retry both live here, at the API boundary: a
// [rate.Limiter] spaces requests and transient statuses (429, 5xx) are
// retried a bounded number of times. Callers never retry.
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends Service for OAuth providers.
// [SpotifyService] implements it for the server-side authorization-code flow
// used by the auth command.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrMalformedFeatures] : audio-features object missing a descriptor
package services
