package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

// statusClientClosedRequest is the status the original UI contract uses for
// randomize failures the user can act on (bad playlist URL, empty playlist,
// nothing playing). The frontend shows the error body verbatim for this code.
const statusClientClosedRequest = 499

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps a service error onto the HTTP surface.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusUnauthorized {
		message = "please log in again"
	}

	writeJSON(w, status, map[string]string{"error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNoSuchSession),
		errors.Is(err, shared.ErrRefreshRejected),
		errors.Is(err, shared.ErrAuthExpired):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrInvalidPlaylistRef),
		errors.Is(err, shared.ErrEmptyPlaylist):
		return statusClientClosedRequest
	case errors.Is(err, shared.ErrExchangeFailed),
		errors.Is(err, shared.ErrTransport):
		return http.StatusBadGateway
	}

	if _, ok := shared.IsUpstreamError(err); ok {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
