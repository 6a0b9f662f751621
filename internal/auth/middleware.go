// Package auth provides the session middleware guarding authenticated
// routes.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"talenthunt/internal/auth/service"
	dErrors "talenthunt/pkg/domain-errors"
	"talenthunt/pkg/platform/httputil"
	"talenthunt/pkg/requestcontext"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "th_session"

// Validator validates a session token. Implemented by the auth service;
// declared here so handlers can be tested with a fake.
type Validator interface {
	Validate(ctx context.Context, token string) (*service.Identity, error)
}

// RequireSession rejects requests without a live session and injects the
// authenticated identity into the request context. The token is read from
// the session cookie, falling back to a bearer Authorization header for
// non-browser clients.
func RequireSession(validator Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := tokenFromRequest(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing session token",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			identity, err := validator.Validate(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired session"))
				return
			}

			ctx = requestcontext.WithUserID(ctx, identity.UserID)
			ctx = requestcontext.WithUsername(ctx, identity.Username)
			ctx = requestcontext.WithSessionID(ctx, identity.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectAuthenticated short-circuits signup/login/verify entry points for
// callers that already hold a live session, mirroring the original flow's
// redirect-to-home guard.
func RedirectAuthenticated(validator Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" {
				if _, err := validator.Validate(r.Context(), token); err == nil {
					http.Redirect(w, r, "/home", http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const bearerPrefix = "Bearer "
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok {
		return after
	}
	return ""
}
