// Package services implements the HTTP clients used by spotwidget.
//
// # Spotify Implementation
//
// [SpotifyService] is a read-only client for the three Spotify Web API endpoints the widget needs:
//   - GET /me (account metadata)
//   - GET /me/playlists?limit=50
//   - GET /me/following?type=artist&limit=50
//
// Credentials are never stored. Token-based calls take an [oauth2.Token] built from the host's
// {type, token} pair with [BearerToken]; the account call forwards the inbound Authorization header.
// Token refresh is the host's responsibility.
//
// An optional [rate.Limiter] is shared by all calls, and an [Observer] receives per-call outcomes.
//
// # Error Handling
//
// Services wrap typed errors from the shared package:
//   - [shared.ErrAPIRequest] : the request could not be sent or read
//   - [shared.ErrDecodeResponse] : the body was not JSON
//   - [APIError] : Spotify returned an error object or a non-2xx status
//
// # Probe Client
//
// [APIService] talks to a running spotwidget server and backs the status and install CLI commands.
package services
