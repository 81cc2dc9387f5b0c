// Spotify Web API client bound to a single account.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	SpotifyAuthURL  = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"
	SpotifyBaseURL  = "https://api.spotify.com/v1"
)

// Page and batch ceilings imposed by the Web API.
const (
	LikedSongsPageSize     = 50
	PlaylistsPageSize      = 50
	PlaylistTracksPageSize = 100
	LikedSongsBatchSize    = 50
	PlaylistTracksBatch    = 100
)

// page is the paging object shared by every list endpoint.
type page[T any] struct {
	Items []T     `json:"items"`
	Total int     `json:"total"`
	Next  *string `json:"next"`
}

type savedTrack struct {
	Track models.Track `json:"track"`
}

// playlistItem.Track is null for removed or unavailable items.
type playlistItem struct {
	Track *models.Track `json:"track"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type createPlaylistResponse struct {
	ID string `json:"id"`
}

type saveTracksRequest struct {
	IDs []string `json:"ids"`
}

type addTracksRequest struct {
	URIs []string `json:"uris"`
}

// ClientOpts configures a [SpotifyClient].
type ClientOpts struct {
	BaseURL    string
	RateLimit  float64      // requests per second, 0 disables pacing
	HTTPClient *http.Client // base client wrapped by the bearer transport
	Logger     *log.Logger
}

// SpotifyClient is a thin paginated REST client for one account's access token.
//
// Tokens are attached as bearer credentials through [oauth2.StaticTokenSource] and are never refreshed.
// Non-success responses become [*shared.RemoteAPIError]; nothing is retried.
type SpotifyClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewSpotifyClient creates a client that authenticates every request with accessToken.
func NewSpotifyClient(ctx context.Context, accessToken string, opts ClientOpts) *SpotifyClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = SpotifyBaseURL
	}

	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	return &SpotifyClient{
		baseURL:    baseURL,
		httpClient: oauth2.NewClient(ctx, src),
		limiter:    limiter,
		logger:     logger,
	}
}

// doRequest performs an authenticated request, encoding body and decoding into result when non-nil.
func (c *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("spotify request", "method", method, "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", shared.ErrAPIRequest, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return &shared.RemoteAPIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %w", shared.ErrAPIRequest, endpoint, err)
	}
	return nil
}

// paginate walks a list endpoint by offset until a page comes back empty.
//
// When followNext is set a null next link also ends the walk.
func paginate[T any](ctx context.Context, c *SpotifyClient, endpoint string, limit int, followNext bool) ([]T, error) {
	var all []T
	for offset := 0; ; offset += limit {
		var p page[T]
		if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("%s?limit=%d&offset=%d", endpoint, limit, offset), nil, &p); err != nil {
			return nil, err
		}

		if len(p.Items) == 0 {
			break
		}
		all = append(all, p.Items...)

		if followNext && p.Next == nil {
			break
		}
	}
	return all, nil
}

// LikedSongs returns every saved track in library order.
//
// The next link is not consulted; paging stops on the first empty page.
func (c *SpotifyClient) LikedSongs(ctx context.Context) ([]models.Track, error) {
	items, err := paginate[savedTrack](ctx, c, "/me/tracks", LikedSongsPageSize, false)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, len(items))
	for i, item := range items {
		tracks[i] = item.Track
	}
	return tracks, nil
}

// Playlists returns the current user's playlists.
func (c *SpotifyClient) Playlists(ctx context.Context) ([]models.SimplifiedPlaylist, error) {
	return paginate[models.SimplifiedPlaylist](ctx, c, "/me/playlists", PlaylistsPageSize, true)
}

// PlaylistTracks returns a playlist's tracks in order, skipping items without a track.
func (c *SpotifyClient) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	items, err := paginate[playlistItem](ctx, c, endpoint, PlaylistTracksPageSize, true)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		if item.Track == nil {
			continue
		}
		tracks = append(tracks, *item.Track)
	}
	return tracks, nil
}

// CurrentUser retrieves the authenticated user's profile.
func (c *SpotifyClient) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := c.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// LibraryStats reads the liked-song and playlist totals.
func (c *SpotifyClient) LibraryStats(ctx context.Context) (models.LibraryStats, error) {
	var liked, playlists page[json.RawMessage]
	if err := c.doRequest(ctx, http.MethodGet, "/me/tracks?limit=1", nil, &liked); err != nil {
		return models.LibraryStats{}, err
	}
	if err := c.doRequest(ctx, http.MethodGet, "/me/playlists?limit=1", nil, &playlists); err != nil {
		return models.LibraryStats{}, err
	}
	return models.NewLibraryStats(liked.Total, playlists.Total), nil
}

// AddLikedSongs saves tracks to the library in batches of [LikedSongsBatchSize], one request per batch.
func (c *SpotifyClient) AddLikedSongs(ctx context.Context, ids []string) error {
	for _, batch := range shared.Chunk(ids, LikedSongsBatchSize) {
		if err := c.doRequest(ctx, http.MethodPut, "/me/tracks", saveTracksRequest{IDs: batch}, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreatePlaylist creates a playlist owned by the current user and returns its ID.
func (c *SpotifyClient) CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return "", err
	}

	var created createPlaylistResponse
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(user.ID))
	body := createPlaylistRequest{Name: name, Description: description, Public: public}
	if err := c.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// AddTracksToPlaylist appends track URIs in batches of [PlaylistTracksBatch], preserving order.
func (c *SpotifyClient) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	for _, batch := range shared.Chunk(uris, PlaylistTracksBatch) {
		if err := c.doRequest(ctx, http.MethodPost, endpoint, addTracksRequest{URIs: batch}, nil); err != nil {
			return err
		}
	}
	return nil
}
