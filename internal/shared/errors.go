package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authorization flow errors
	ErrInvalidState    = fmt.Errorf("invalid or already used state")
	ErrExchangeFailed  = fmt.Errorf("authorization code exchange failed")
	ErrNoSuchSession   = fmt.Errorf("no session found")
	ErrRefreshRejected = fmt.Errorf("refresh token rejected")
	ErrAuthExpired     = fmt.Errorf("authorization expired")

	// Randomize errors
	ErrInvalidPlaylistRef = fmt.Errorf("invalid playlist reference")
	ErrEmptyPlaylist      = fmt.Errorf("playlist has no tracks")

	// Remote API errors
	ErrTransport = fmt.Errorf("transport failure")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// UpstreamError reports a non-success status from the remote API that is not
// an authorization failure. It is never retried.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("spotify API error: status %d", e.Status)
}

// IsUpstreamError reports whether err wraps an [UpstreamError] and returns it.
func IsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	ok := errors.As(err, &ue)
	return ue, ok
}
