package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

type fakeRandomizer struct {
	queued int
	err    error

	sessionKey  string
	playlistRef string
	trackCount  int
}

func (f *fakeRandomizer) Randomize(ctx context.Context, sessionKey, playlistRef string, trackCount int) (int, error) {
	f.sessionKey = sessionKey
	f.playlistRef = playlistRef
	f.trackCount = trackCount
	return f.queued, f.err
}

func randomizeRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/randomize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return withSessionCookie(req, "session-1")
}

func TestRandomizeHandler(t *testing.T) {
	t.Run("Queues Tracks", func(t *testing.T) {
		engine := &fakeRandomizer{queued: 10}
		handler := NewRandomizeHandler(engine, shared.NewLogger(nil))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, randomizeRequest(`{"playlistId":"https://open.spotify.com/playlist/abc123","numTracks":10}`))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"queued":10`) {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
		if engine.sessionKey != "session-1" {
			t.Errorf("expected session-1, got %q", engine.sessionKey)
		}
		if engine.playlistRef != "https://open.spotify.com/playlist/abc123" {
			t.Errorf("unexpected playlist ref %q", engine.playlistRef)
		}
		if engine.trackCount != 10 {
			t.Errorf("expected track count 10, got %d", engine.trackCount)
		}
	})

	t.Run("No Cookie", func(t *testing.T) {
		handler := NewRandomizeHandler(&fakeRandomizer{}, shared.NewLogger(nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/randomize", strings.NewReader(`{}`))
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "please log in again" {
			t.Errorf("unexpected error message %q", body["error"])
		}
	})

	t.Run("Malformed Body", func(t *testing.T) {
		handler := NewRandomizeHandler(&fakeRandomizer{}, shared.NewLogger(nil))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, randomizeRequest(`{not json`))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("Missing Playlist", func(t *testing.T) {
		handler := NewRandomizeHandler(&fakeRandomizer{}, shared.NewLogger(nil))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, randomizeRequest(`{"numTracks":10}`))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("Unsupported Track Count", func(t *testing.T) {
		handler := NewRandomizeHandler(&fakeRandomizer{}, shared.NewLogger(nil))

		for _, count := range []int{0, -5, 7, 100} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, randomizeRequest(fmt.Sprintf(`{"playlistId":"x","numTracks":%d}`, count)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("numTracks=%d: expected status 400, got %d", count, rec.Code)
			}
		}
	})

	t.Run("User Facing Failures Use 499", func(t *testing.T) {
		for _, err := range []error{shared.ErrInvalidPlaylistRef, shared.ErrEmptyPlaylist} {
			handler := NewRandomizeHandler(&fakeRandomizer{err: err}, shared.NewLogger(nil))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, randomizeRequest(`{"playlistId":"x","numTracks":5}`))

			if rec.Code != statusClientClosedRequest {
				t.Errorf("%v: expected status 499, got %d", err, rec.Code)
			}
			if body := decodeBody(t, rec); body["error"] != err.Error() {
				t.Errorf("%v: expected the error text verbatim, got %q", err, body["error"])
			}
		}
	})

	t.Run("Expired Auth", func(t *testing.T) {
		handler := NewRandomizeHandler(&fakeRandomizer{err: shared.ErrAuthExpired}, shared.NewLogger(nil))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, randomizeRequest(`{"playlistId":"x","numTracks":5}`))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "please log in again" {
			t.Errorf("unexpected error message %q", body["error"])
		}
	})

	t.Run("Upstream Failure", func(t *testing.T) {
		handler := NewRandomizeHandler(&fakeRandomizer{err: &shared.UpstreamError{Status: 404}}, shared.NewLogger(nil))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, randomizeRequest(`{"playlistId":"x","numTracks":5}`))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected status 502, got %d", rec.Code)
		}
	})

	t.Run("Rejects GET", func(t *testing.T) {
		handler := NewRandomizeHandler(&fakeRandomizer{}, shared.NewLogger(nil))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/randomize", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", rec.Code)
		}
	})
}
