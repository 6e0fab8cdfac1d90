// package services implements the HTTP client for the Spotify Web API
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"net/http"
)

// TokenProvider supplies the bearer credential for a session and refreshes it
// when the remote API signals it is stale. Implemented by [auth.Manager].
type TokenProvider interface {
	// AccessToken returns the session's current access token.
	AccessToken(ctx context.Context, sessionKey string) (string, error)

	// Refresh exchanges the session's refresh credential for a new access
	// token. staleToken is the token that was just rejected.
	Refresh(ctx context.Context, sessionKey, staleToken string) (string, error)
}

// APIResponse represents a raw Spotify API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// SpotifyTrack represents the subset of a Spotify track needed for queueing.
type SpotifyTrack struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyPlaylistItem represents a track within a playlist context.
type SpotifyPlaylistItem struct {
	AddedAt string       `json:"added_at"`
	IsLocal bool         `json:"is_local"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPlaylistTracksPage represents one page of a playlist's track listing.
type SpotifyPlaylistTracksPage struct {
	Items  []SpotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}
