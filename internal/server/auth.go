package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
)

// LifecycleManager is the slice of the token lifecycle manager the HTTP
// surface needs. Implemented by [auth.Manager].
type LifecycleManager interface {
	BeginLogin(ctx context.Context) (string, error)
	CompleteLogin(ctx context.Context, code, state string) (string, error)
	CheckSession(ctx context.Context, sessionKey string) error
	Logout(ctx context.Context, sessionKey string) error
}

// AuthHandler serves the login, callback, session-check, and logout endpoints.
// Implements the [Handler] interface for registration with a [Router].
type AuthHandler struct {
	manager    LifecycleManager
	logger     *log.Logger
	appURL     string
	production bool
}

// AuthHandlerOpts contains configuration options for creating an AuthHandler.
type AuthHandlerOpts struct {
	Manager    LifecycleManager
	Logger     *log.Logger
	AppURL     string
	Production bool
}

// NewAuthHandler creates an AuthHandler for the given lifecycle manager.
func NewAuthHandler(opts AuthHandlerOpts) *AuthHandler {
	return &AuthHandler{
		manager:    opts.Manager,
		logger:     opts.Logger,
		appURL:     opts.AppURL,
		production: opts.Production,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"/api/login", "/api/callback", "/api/check-token", "/api/logout"}
}

// ServeHTTP dispatches to the endpoint handlers by path.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/login":
		h.login(w, r)
	case "/api/callback":
		h.callback(w, r)
	case "/api/check-token":
		h.checkToken(w, r)
	case "/api/logout":
		h.logout(w, r)
	default:
		http.NotFound(w, r)
	}
}

// login starts the authorization flow and redirects the user agent to the
// provider's consent page.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	authURL, err := h.manager.BeginLogin(r.Context())
	if err != nil {
		h.logger.Error("failed to begin login", "error", err)
		writeError(w, err)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// callback completes the authorization flow after the provider redirect,
// sets the session cookie, and sends the user agent back to the app.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")

	if code == "" {
		h.logger.Warn("authorization denied by provider",
			"error", query.Get("error"), "description", query.Get("error_description"))
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	sessionKey, err := h.manager.CompleteLogin(r.Context(), code, state)
	if err != nil {
		h.logger.Error("failed to complete login", "error", err)
		writeError(w, err)
		return
	}

	SetSessionCookie(w, sessionKey, h.production)
	http.Redirect(w, r, h.appURL, http.StatusFound)
}

// checkToken reports whether the browser still has a usable session.
// The UI calls this on load to decide between the form and the login redirect.
func (h *AuthHandler) checkToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionKey := SessionKey(r)
	if sessionKey == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "please log in again"})
		return
	}

	if err := h.manager.CheckSession(r.Context(), sessionKey); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
}

// logout deletes the session's credentials and clears the cookie. Idempotent:
// logging out without a session still succeeds.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionKey := SessionKey(r)
	if sessionKey != "" {
		if err := h.manager.Logout(r.Context(), sessionKey); err != nil {
			h.logger.Error("failed to log out", "session", sessionKey, "error", err)
			writeError(w, err)
			return
		}
	}

	ClearSessionCookie(w, h.production)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
