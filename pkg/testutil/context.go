package testutil

import (
	"net/http"

	id "talenthunt/pkg/domain"
	"talenthunt/pkg/requestcontext"
)

// WithAuth adds user identity and session ID to the request context,
// simulating what the auth middleware does for authenticated requests.
// Invalid IDs are silently ignored.
func WithAuth(req *http.Request, userID, username, sessionID string) *http.Request {
	ctx := req.Context()
	if userID != "" {
		if parsed, err := id.ParseUserID(userID); err == nil {
			ctx = requestcontext.WithUserID(ctx, parsed)
		}
	}
	if username != "" {
		ctx = requestcontext.WithUsername(ctx, username)
	}
	if sessionID != "" {
		if parsed, err := id.ParseSessionID(sessionID); err == nil {
			ctx = requestcontext.WithSessionID(ctx, parsed)
		}
	}
	return req.WithContext(ctx)
}
