package services

import (
	"context"

	"golang.org/x/oauth2"
)

// SpotifyClient is the read-only subset of the Spotify Web API used during install.
type SpotifyClient interface {
	// UserPlaylists returns a single page of up to limit playlists.
	UserPlaylists(ctx context.Context, token *oauth2.Token, limit int) (*SpotifyPaginatedPlaylists, error)

	// FollowedArtists returns a single page of up to limit followed artists.
	FollowedArtists(ctx context.Context, token *oauth2.Token, limit int) (*SpotifyFollowedArtists, error)

	// UserProfile returns the profile of the user identified by the raw Authorization header.
	UserProfile(ctx context.Context, authorization string) (*SpotifyUser, error)
}

var _ SpotifyClient = (*SpotifyService)(nil)
