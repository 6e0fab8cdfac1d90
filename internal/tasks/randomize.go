// package tasks implements the playlist randomization operation.
//
// The core abstraction is [ShuffleEngine], which fetches a playlist's tracks,
// shuffles them uniformly, and appends a selection to the session's playback
// queue through the resilient Spotify client.
package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

// playlistRefPattern matches the identifier segment immediately following
// "playlist/" in a Spotify playlist URL or URI.
var playlistRefPattern = regexp.MustCompile(`playlist/([a-zA-Z0-9]+)(?:\?|$|/|&)`)

// SpotifyAPI is the slice of the Spotify client the engine needs.
type SpotifyAPI interface {
	PlaylistTrackURIs(ctx context.Context, sessionKey, playlistID string) ([]string, error)
	QueueTrack(ctx context.Context, sessionKey, trackURI string) error
}

// ShuffleEngine performs the randomize operation for one session at a time.
//
// Enqueue calls are sequential because the remote queue is order-sensitive and
// Spotify offers no atomic multi-track enqueue. A mid-sequence failure leaves
// the already-queued tracks in place; rollback is not possible against an
// external queue.
type ShuffleEngine struct {
	client  SpotifyAPI
	limiter *rate.Limiter
	logger  *log.Logger
}

// ShuffleEngineOpts contains configuration options for creating a ShuffleEngine.
type ShuffleEngineOpts struct {
	Client SpotifyAPI
	Logger *log.Logger

	// QueueRate paces the sequential enqueue calls. Zero means a conservative
	// default of ten calls per second.
	QueueRate float64
}

// NewShuffleEngine creates a ShuffleEngine with the provided Spotify client.
func NewShuffleEngine(opts ShuffleEngineOpts) (*ShuffleEngine, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("%w: spotify client is required", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.QueueRate <= 0 {
		opts.QueueRate = 10
	}

	return &ShuffleEngine{
		client:  opts.Client,
		limiter: rate.NewLimiter(rate.Limit(opts.QueueRate), 1),
		logger:  opts.Logger,
	}, nil
}

// ExtractPlaylistID parses a playlist URL/URI into its canonical identifier.
func ExtractPlaylistID(playlistRef string) (string, error) {
	match := playlistRefPattern.FindStringSubmatch(playlistRef)
	if match == nil {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidPlaylistRef, playlistRef)
	}
	return match[1], nil
}

// Randomize fetches the referenced playlist, shuffles its tracks, and enqueues
// trackCount of them. Returns the number of tracks actually enqueued along
// with the first error encountered, which halts the remaining calls.
func (e *ShuffleEngine) Randomize(ctx context.Context, sessionKey, playlistRef string, trackCount int) (int, error) {
	if trackCount <= 0 {
		return 0, fmt.Errorf("%w: track count must be positive", shared.ErrInvalidArgument)
	}

	playlistID, err := ExtractPlaylistID(playlistRef)
	if err != nil {
		return 0, err
	}

	uris, err := e.client.PlaylistTrackURIs(ctx, sessionKey, playlistID)
	if err != nil {
		return 0, err
	}

	// An empty playlist is reported distinctly from transport failures: to the
	// end user it looks identical to "nothing is playing", so the caller must
	// be able to name the actual cause.
	if len(uris) == 0 {
		return 0, shared.ErrEmptyPlaylist
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	selected := selectTracks(rng, uris, trackCount)

	e.logger.Info("queueing tracks", "playlist", playlistID, "count", len(selected))

	for i, uri := range selected {
		if err := ctx.Err(); err != nil {
			return i, fmt.Errorf("%w: %v", shared.ErrTransport, err)
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return i, fmt.Errorf("%w: %v", shared.ErrTransport, err)
		}
		if err := e.client.QueueTrack(ctx, sessionKey, uri); err != nil {
			return i, err
		}
	}

	return len(selected), nil
}

// shuffleTracks permutes uris in place with a Fisher-Yates shuffle, so every
// permutation is equally likely.
func shuffleTracks(rng *rand.Rand, uris []string) {
	for i := len(uris) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		uris[i], uris[j] = uris[j], uris[i]
	}
}

// selectTracks shuffles uris and returns count entries. When count exceeds the
// playlist size it cycles through the list, reshuffling on each wrap, so
// repeats are allowed but never positionally predictable.
func selectTracks(rng *rand.Rand, uris []string, count int) []string {
	shuffleTracks(rng, uris)

	if count <= len(uris) {
		return append([]string(nil), uris[:count]...)
	}

	selected := make([]string, 0, count)
	for len(selected) < count {
		remaining := count - len(selected)
		if remaining < len(uris) {
			selected = append(selected, uris[:remaining]...)
			break
		}
		selected = append(selected, uris...)
		shuffleTracks(rng, uris)
	}

	return selected
}
