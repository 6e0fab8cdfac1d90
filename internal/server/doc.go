// Package server provides HTTP routing, middleware, and the API surface the
// shuffler UI calls.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] internally with method filtering.
//
// # Handlers
//
// [AuthHandler] owns the authorization-code flow surface: /api/login starts
// the PKCE handshake, /api/callback finishes it and sets the session cookie,
// /api/check-token is the UI's bootstrap probe, /api/logout tears the session
// down. [RandomizeHandler] serves the single domain operation, and
// [HealthHandler] reports dependency reachability.
//
// # Session boundary
//
// The browser only ever holds an opaque session key in an HTTP-only,
// SameSite=Strict cookie. Tokens stay server-side; handlers look them up
// through the lifecycle manager.
//
// # Error contract
//
// Errors map onto statuses in respond.go: 400 for bad input, 401 for
// anything that requires a fresh login, 499 with a JSON error body for
// user-actionable randomize failures (the UI renders that body verbatim),
// and 502 for upstream or transport trouble safe to retry manually.
package server
