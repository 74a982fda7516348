// Package server implements the short-lived localhost HTTP server used by
// the auth command's OAuth2 authorization-code flow.
//
// [BasicRouter] routes requests through an optional middleware stack to the
// [OAuthHandler], which validates the state token, exchanges the
// authorization code, and delivers the token over a channel to the waiting
// CLI. The server exists only for the duration of one authorization and is
// shut down as soon as a result arrives.
package server
