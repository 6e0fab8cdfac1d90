package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/asd638796/spotify-playlist-shuffler/internal/models"
	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

// Randomizer is the domain operation behind POST /api/randomize.
// Implemented by [tasks.ShuffleEngine].
type Randomizer interface {
	Randomize(ctx context.Context, sessionKey, playlistRef string, trackCount int) (int, error)
}

// allowedTrackCounts mirrors the UI's radio buttons.
var allowedTrackCounts = map[int]bool{5: true, 10: true, 15: true}

// RandomizeHandler serves the one business endpoint of the service.
type RandomizeHandler struct {
	engine Randomizer
	logger *log.Logger
}

// NewRandomizeHandler creates a RandomizeHandler for the given engine.
func NewRandomizeHandler(engine Randomizer, logger *log.Logger) *RandomizeHandler {
	return &RandomizeHandler{engine: engine, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *RandomizeHandler) Routes() []string {
	return []string{"/api/randomize"}
}

// ServeHTTP handles POST /api/randomize.
func (h *RandomizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionKey := SessionKey(r)
	if sessionKey == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "please log in again"})
		return
	}

	var req models.QueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", shared.ErrInvalidInput))
		return
	}

	if req.PlaylistRef == "" {
		writeError(w, fmt.Errorf("%w: playlistId", shared.ErrMissingArgument))
		return
	}
	if !allowedTrackCounts[req.TrackCount] {
		writeError(w, fmt.Errorf("%w: numTracks must be 5, 10 or 15", shared.ErrInvalidArgument))
		return
	}

	queued, err := h.engine.Randomize(r.Context(), sessionKey, req.PlaylistRef, req.TrackCount)
	if err != nil {
		// Tracks queued before the failure stay queued; the count is logged
		// but the response reports the error, not a partial success.
		h.logger.Warn("randomize failed", "queued", queued, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"queued": queued})
}
