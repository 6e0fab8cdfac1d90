package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/asd638796/spotify-playlist-shuffler/internal/models"
	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// stateBytes is the length of the random anti-replay state value.
	stateBytes = 16

	defaultChallengeTTL = 10 * time.Minute
)

// spotifyScopes are requested up front so the session can read playlists and
// modify the playback queue.
var spotifyScopes = []string{
	"user-read-private",
	"user-read-email",
	"playlist-modify-private",
	"playlist-modify-public",
	"user-modify-playback-state",
}

// TokenStore is the credential store the manager writes through.
// Implemented by [repositories.TokenRepository].
type TokenStore interface {
	Create(record *models.CredentialRecord) error
	Get(sessionKey string) (*models.CredentialRecord, error)
	GetByRefreshToken(refreshToken string) (*models.CredentialRecord, error)
	Update(record *models.CredentialRecord) error
	Delete(sessionKey string) error
}

// Manager owns the credential lifecycle: it turns authorization codes into
// token records, hands out the current access token, performs refresh
// exchanges, and deletes records on logout.
//
// The manager is the only writer of the token store. Callers that hit a 401
// come back through [Manager.Refresh] rather than refreshing themselves.
type Manager struct {
	config       *oauth2.Config
	tokens       TokenStore
	challenges   ChallengeStore
	logger       *log.Logger
	httpClient   *http.Client
	challengeTTL time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// ManagerOpts contains configuration options for creating a Manager.
type ManagerOpts struct {
	ClientID     string
	RedirectURI  string
	Tokens       TokenStore
	Challenges   ChallengeStore
	Logger       *log.Logger
	HTTPClient   *http.Client
	ChallengeTTL time.Duration

	// AuthURL and TokenURL override the Spotify endpoints, for tests.
	AuthURL  string
	TokenURL string
}

// NewManager creates a Manager for the Spotify authorization-code + PKCE flow.
func NewManager(opts ManagerOpts) (*Manager, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	if opts.Tokens == nil || opts.Challenges == nil {
		return nil, fmt.Errorf("%w: token and challenge stores are required", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.ChallengeTTL <= 0 {
		opts.ChallengeTTL = defaultChallengeTTL
	}
	if opts.AuthURL == "" {
		opts.AuthURL = spotifyAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}

	config := &oauth2.Config{
		ClientID:    opts.ClientID,
		RedirectURL: opts.RedirectURI,
		Scopes:      spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  opts.AuthURL,
			TokenURL: opts.TokenURL,
		},
	}

	return &Manager{
		config:       config,
		tokens:       opts.Tokens,
		challenges:   opts.Challenges,
		logger:       opts.Logger,
		httpClient:   opts.HTTPClient,
		challengeTTL: opts.ChallengeTTL,
		locks:        make(map[string]*sync.Mutex),
	}, nil
}

// BeginLogin starts the authorization flow.
//
// Generates a code verifier and anti-replay state, caches the pair, and
// returns the provider authorization URL carrying the derived S256 challenge.
func (m *Manager) BeginLogin(ctx context.Context) (string, error) {
	verifier := oauth2.GenerateVerifier()

	state, err := shared.GenerateState(stateBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := m.challenges.Save(ctx, state, verifier, m.challengeTTL); err != nil {
		return "", fmt.Errorf("failed to save login challenge: %w", err)
	}

	return m.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// CompleteLogin finishes the authorization flow after the provider redirect.
//
// The state's verifier is consumed before anything else, so only the first
// callback for a pending login can reach the token endpoint. On success the
// credential record is upserted keyed by refresh token: an unchanged refresh
// token keeps its session key, a new one gets a fresh session key.
func (m *Manager) CompleteLogin(ctx context.Context, code, state string) (string, error) {
	verifier, err := m.challenges.Consume(ctx, state)
	if err != nil {
		return "", err
	}

	tok, err := m.config.Exchange(m.providerContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", fmt.Errorf("%w: provider returned %d", shared.ErrExchangeFailed, retrieveErr.Response.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}

	if tok.RefreshToken == "" {
		return "", fmt.Errorf("%w: provider response carried no refresh token", shared.ErrExchangeFailed)
	}

	record, err := m.tokens.GetByRefreshToken(tok.RefreshToken)
	switch {
	case err == nil:
		record.SetAccessToken(tok.AccessToken)
		record.SetExpiresAt(tok.Expiry)
		if err := m.tokens.Update(record); err != nil {
			return "", fmt.Errorf("failed to update credential record: %w", err)
		}
	case errors.Is(err, shared.ErrNoSuchSession):
		record = models.NewCredentialRecord(0, tok.RefreshToken, tok.AccessToken, tok.Expiry)
		if err := m.tokens.Create(record); err != nil {
			return "", fmt.Errorf("failed to create credential record: %w", err)
		}
	default:
		return "", err
	}

	m.logger.Info("login completed", "session", record.ID())
	return record.ID(), nil
}

// AccessToken returns the stored access token for the session without checking
// its expiry. Staleness is discovered reactively: the provider's own 401 is
// ground truth, which tolerates clock skew and early provider-side revocation.
func (m *Manager) AccessToken(ctx context.Context, sessionKey string) (string, error) {
	record, err := m.tokens.Get(sessionKey)
	if err != nil {
		return "", err
	}
	return record.AccessToken(), nil
}

// Refresh exchanges the session's refresh token for a new access token.
//
// staleToken is the access token the caller observed failing. Refresh for a
// single session is a critical section: concurrent callers serialize on a
// per-session lock, and whoever enters second finds the stored token already
// changed and reuses it without a second provider exchange. Many providers
// rotate and invalidate refresh tokens on use, so a double exchange could
// kill the session.
//
// A provider rejection is terminal: the record is deleted and
// [shared.ErrRefreshRejected] forces a fresh login.
func (m *Manager) Refresh(ctx context.Context, sessionKey, staleToken string) (string, error) {
	lock := m.sessionLock(sessionKey)
	lock.Lock()
	defer lock.Unlock()

	record, err := m.tokens.Get(sessionKey)
	if err != nil {
		return "", err
	}

	if record.AccessToken() != staleToken {
		// Another request already refreshed this session.
		return record.AccessToken(), nil
	}

	src := m.config.TokenSource(m.providerContext(ctx), &oauth2.Token{RefreshToken: record.RefreshToken()})
	tok, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			m.logger.Warn("refresh token rejected, deleting session", "session", sessionKey)
			if delErr := m.tokens.Delete(sessionKey); delErr != nil {
				m.logger.Error("failed to delete rejected session", "session", sessionKey, "error", delErr)
			}
			return "", shared.ErrRefreshRejected
		}
		return "", fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}

	record.SetAccessToken(tok.AccessToken)
	record.SetExpiresAt(tok.Expiry)
	if tok.RefreshToken != "" && tok.RefreshToken != record.RefreshToken() {
		// Provider rotated the refresh token.
		record.SetRefreshToken(tok.RefreshToken)
	}

	if err := m.tokens.Update(record); err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	m.logger.Debug("access token refreshed", "session", sessionKey)
	return tok.AccessToken, nil
}

// Logout deletes the session's credential record. Idempotent.
func (m *Manager) Logout(ctx context.Context, sessionKey string) error {
	if err := m.tokens.Delete(sessionKey); err != nil {
		return err
	}
	m.locksForget(sessionKey)
	return nil
}

// CheckSession reports whether a credential record exists for the session.
func (m *Manager) CheckSession(ctx context.Context, sessionKey string) error {
	_, err := m.tokens.Get(sessionKey)
	return err
}

// providerContext makes the oauth2 package use the manager's bounded client
// for token endpoint calls.
func (m *Manager) providerContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

func (m *Manager) sessionLock(sessionKey string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[sessionKey]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionKey] = lock
	}
	return lock
}

func (m *Manager) locksForget(sessionKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, sessionKey)
}
