// Package handler exposes the signup endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"talenthunt/internal/auth"
	authmodels "talenthunt/internal/auth/models"
	identitymodels "talenthunt/internal/identity/models"
	registrationservice "talenthunt/internal/registration/service"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/httputil"
	"talenthunt/pkg/requestcontext"
)

// Service defines the registration operations the handler needs.
type Service interface {
	Start(ctx context.Context, signup registrationservice.Signup) (string, error)
	Verify(ctx context.Context, token, code string) (*identitymodels.User, error)
}

// SessionIssuer establishes the authenticated session after verification.
type SessionIssuer interface {
	Issue(ctx context.Context, userID id.UserID, username string) (string, *authmodels.Session, error)
}

// Handler wires signup endpoints to the registration service.
type Handler struct {
	service  Service
	sessions SessionIssuer
	logger   *slog.Logger
}

func New(service Service, sessions SessionIssuer, logger *slog.Logger) *Handler {
	return &Handler{service: service, sessions: sessions, logger: logger}
}

// Register mounts the signup endpoints on the router. Mount behind the
// RedirectAuthenticated middleware so logged-in callers land on /home.
func (h *Handler) Register(r chi.Router) {
	r.Post("/signup", h.HandleSignup)
	r.Post("/verify", h.HandleVerify)
}

// HandleSignup handles POST /signup requests.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SignupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	token, err := h.service.Start(ctx, req.ToSignup())
	if err != nil {
		h.logger.WarnContext(ctx, "signup rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, SignupResponse{
		RegistrationToken: token,
		Message:           "a verification code has been sent to your email",
	})
}

// HandleVerify handles POST /verify requests. On success the account exists
// and the caller is logged in via the session cookie.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.Verify(ctx, req.RegistrationToken, req.OTP)
	if err != nil {
		h.logger.WarnContext(ctx, "verification failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	token, session, err := h.sessions.Issue(ctx, user.ID, user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue session after verification",
			"request_id", requestID,
			"user_id", user.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	auth.SetSessionCookie(w, token, session.ExpiresAt)
	httputil.WriteJSON(w, http.StatusCreated, VerifyResponse{
		Username: user.Username,
		Message:  "account created",
	})
}
