package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

// HealthChecker verifies one backing dependency is reachable.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthHandler reports service liveness and the reachability of the token
// store and challenge cache.
type HealthHandler struct {
	db     *sql.DB
	checks []HealthChecker
}

// NewHealthHandler creates a HealthHandler over the database and any
// additional dependency checks.
func NewHealthHandler(db *sql.DB, checks ...HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, checks: checks}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/api/health"}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": "database unreachable"})
			return
		}
	}

	for _, check := range h.checks {
		if err := check.CheckHealth(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
