package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

const (
	spotifyBaseURL = "https://api.spotify.com"

	// trackPageLimit is the page size for playlist track listings; a page
	// shorter than this signals end-of-list.
	trackPageLimit = 100
)

// SpotifyClient calls the Spotify Web API on behalf of a session.
//
// Every call goes through [SpotifyClient.Do], which owns the retry policy:
// one refresh-and-retry on an authorization failure, one plain retry on a
// transport failure, nothing else. A second 401 after a fresh refresh means
// the session itself is invalid, not the token, so it surfaces as
// [shared.ErrAuthExpired].
type SpotifyClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	logger     *log.Logger
}

// SpotifyClientOpts contains configuration options for creating a SpotifyClient.
type SpotifyClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenProvider
	Logger     *log.Logger
}

// NewSpotifyClient creates a Spotify API client backed by the given token provider.
func NewSpotifyClient(opts SpotifyClientOpts) (*SpotifyClient, error) {
	if opts.Tokens == nil {
		return nil, fmt.Errorf("%w: token provider is required", shared.ErrInvalidConfig)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &SpotifyClient{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		tokens:     opts.Tokens,
		logger:     opts.Logger,
	}, nil
}

// Do performs an authenticated request against the Spotify API.
//
// The retry policy is an explicit loop rather than recursion so the at-most-
// one-refresh and at-most-one-transport-retry bounds are structurally visible.
func (c *SpotifyClient) Do(ctx context.Context, sessionKey, method, path string) (*APIResponse, error) {
	token, err := c.tokens.AccessToken(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	var refreshed, retriedTransport bool
	for {
		resp, err := c.send(ctx, method, path, token)
		if err != nil {
			if retriedTransport || ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
			}
			retriedTransport = true
			c.logger.Debug("retrying after transport failure", "method", method, "path", path, "error", err)
			continue
		}

		if resp.StatusCode == http.StatusUnauthorized {
			if refreshed {
				return nil, shared.ErrAuthExpired
			}
			token, err = c.tokens.Refresh(ctx, sessionKey, token)
			if err != nil {
				return nil, err
			}
			refreshed = true
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &shared.UpstreamError{Status: resp.StatusCode}
		}

		return resp, nil
	}
}

// send performs a single HTTP round trip with the given bearer token.
func (c *SpotifyClient) send(ctx context.Context, method, path, token string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// PlaylistTracks retrieves one page of a playlist's track listing.
func (c *SpotifyClient) PlaylistTracks(ctx context.Context, sessionKey, playlistID string, limit, offset int) (*SpotifyPlaylistTracksPage, error) {
	path := fmt.Sprintf("/v1/playlists/%s/tracks?offset=%d&limit=%d", url.PathEscape(playlistID), offset, limit)

	resp, err := c.Do(ctx, sessionKey, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var page SpotifyPlaylistTracksPage
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode playlist page: %w", err)
	}

	return &page, nil
}

// PlaylistTrackURIs pages through the playlist and returns every track URI,
// preserving playlist order. Paging stops at the first page shorter than the
// page size.
func (c *SpotifyClient) PlaylistTrackURIs(ctx context.Context, sessionKey, playlistID string) ([]string, error) {
	var uris []string
	offset := 0

	for {
		page, err := c.PlaylistTracks(ctx, sessionKey, playlistID, trackPageLimit, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track.URI == "" {
				// Local files have no queueable URI.
				continue
			}
			uris = append(uris, item.Track.URI)
		}

		if len(page.Items) < trackPageLimit {
			break
		}
		offset += trackPageLimit
	}

	return uris, nil
}

// QueueTrack appends one track to the session's active playback queue.
//
// The endpoint requires an active playback context on the user's account;
// without one Spotify responds 404, which surfaces as an upstream error.
func (c *SpotifyClient) QueueTrack(ctx context.Context, sessionKey, trackURI string) error {
	path := "/v1/me/player/queue?uri=" + url.QueryEscape(trackURI)

	_, err := c.Do(ctx, sessionKey, http.MethodPost, path)
	return err
}
