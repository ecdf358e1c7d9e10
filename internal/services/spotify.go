// Spotify Web API client used to populate widget choice schemas.
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/spotwidget/internal/models"
	"github.com/desertthunder/spotwidget/internal/shared"
	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// MaxPageSize is the largest page the Spotify list endpoints accept.
	MaxPageSize = 50

	defaultTimeout = 10 * time.Second
)

// Upstream endpoint labels reported to the [Observer].
const (
	EndpointProfile   = "me"
	EndpointPlaylists = "me/playlists"
	EndpointFollowing = "me/following"
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Images      []SpotifyImage `json:"images"`
}

// Username returns the display name, falling back to the user id.
func (u SpotifyUser) Username() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Type        string              `json:"type"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
	Images      []SpotifyImage      `json:"images"`
	URI         string              `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items    []SpotifySimplePlaylist `json:"items"`
	Total    int                     `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
	Next     *string                 `json:"next"`
	Previous *string                 `json:"previous"`
}

// ChoiceItems projects the page onto choice items keyed by playlist URI.
func (p *SpotifyPaginatedPlaylists) ChoiceItems() []models.Item {
	items := make([]models.Item, 0, len(p.Items))
	for _, pl := range p.Items {
		items = append(items, models.Item{Key: pl.URI, Name: pl.Name})
	}
	return items
}

type cursors struct {
	After string `json:"after"`
}

// SpotifyCursorArtists is a cursor-paginated page of artists.
type SpotifyCursorArtists struct {
	Items   []SpotifyArtist `json:"items"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Next    *string         `json:"next"`
	Cursors cursors         `json:"cursors"`
}

// SpotifyFollowedArtists is the response of GET /me/following?type=artist.
type SpotifyFollowedArtists struct {
	Artists SpotifyCursorArtists `json:"artists"`
}

// ChoiceItems projects the page onto choice items keyed by artist URI.
func (f *SpotifyFollowedArtists) ChoiceItems() []models.Item {
	items := make([]models.Item, 0, len(f.Artists.Items))
	for _, a := range f.Artists.Items {
		items = append(items, models.Item{Key: a.URI, Name: a.Name})
	}
	return items
}

// APIError is an error object returned by the Spotify Web API, or a non-2xx status without one.
type APIError struct {
	StatusCode int
	Payload    json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.Payload) == 0 {
		return fmt.Sprintf("spotify API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("spotify API error: status %d: %s", e.StatusCode, e.Message())
}

// Message returns the compact upstream error payload.
func (e *APIError) Message() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, e.Payload); err != nil {
		return string(e.Payload)
	}
	return buf.String()
}

// Observer receives upstream call outcomes, e.g. for metrics.
type Observer interface {
	ObserveUpstream(endpoint, outcome string, elapsed time.Duration)
}

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables
	Observer   Observer
}

// SpotifyService is a read-only Spotify Web API client.
//
// Credentials are supplied per call; the service holds no token state and is safe for concurrent use.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	observer   Observer
}

// NewSpotifyService creates a new Spotify client.
func NewSpotifyService(opts SpotifyOpts) *SpotifyService {
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &SpotifyService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		limiter:    limiter,
		observer:   opts.Observer,
	}
}

// BearerToken converts a host-supplied token into an [oauth2.Token].
func BearerToken(t models.Token) *oauth2.Token {
	return &oauth2.Token{AccessToken: t.Token, TokenType: t.Type}
}

// doRequest performs an authenticated GET against the Spotify API and decodes the JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, label, endpoint string, authorize func(*http.Request), result any) (err error) {
	start := time.Now()
	defer func() {
		if s.observer != nil {
			s.observer.ObserveUpstream(label, outcome(err), time.Since(start))
		}
	}()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if authorize != nil {
		authorize(req)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: status %d: %v", shared.ErrDecodeResponse, resp.StatusCode, err)
	}
	if len(envelope.Error) > 0 && string(envelope.Error) != "null" {
		return &APIError{StatusCode: resp.StatusCode, Payload: envelope.Error}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrDecodeResponse, err)
		}
	}

	return nil
}

func outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.Is(err, shared.ErrDecodeResponse):
		return "decode_error"
	default:
		return "transport_error"
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// UserProfile retrieves the current user's profile, forwarding authorization verbatim.
func (s *SpotifyService) UserProfile(ctx context.Context, authorization string) (*SpotifyUser, error) {
	var user SpotifyUser
	authorize := func(r *http.Request) {
		if authorization != "" {
			r.Header.Set("Authorization", authorization)
		}
	}
	if err := s.doRequest(ctx, EndpointProfile, "/me", authorize, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPlaylists retrieves one page of the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, token *oauth2.Token, limit int) (*SpotifyPaginatedPlaylists, error) {
	if token == nil {
		return nil, fmt.Errorf("%w: no token", shared.ErrMissingCredentials)
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d", clampLimit(limit))

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, EndpointPlaylists, endpoint, token.SetAuthHeader, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// FollowedArtists retrieves one page of the artists the current user follows.
func (s *SpotifyService) FollowedArtists(ctx context.Context, token *oauth2.Token, limit int) (*SpotifyFollowedArtists, error) {
	if token == nil {
		return nil, fmt.Errorf("%w: no token", shared.ErrMissingCredentials)
	}

	endpoint := fmt.Sprintf("/me/following?type=artist&limit=%d", clampLimit(limit))

	var response SpotifyFollowedArtists
	if err := s.doRequest(ctx, EndpointFollowing, endpoint, token.SetAuthHeader, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ErrorMessage renders err for a host-facing error object. Upstream error objects are
// reported as their compact JSON payload.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Payload) > 0 {
		return apiErr.Message()
	}
	return err.Error()
}
