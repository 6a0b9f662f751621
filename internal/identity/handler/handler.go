// Package handler exposes login, logout, password change, and user search.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"talenthunt/internal/audit"
	"talenthunt/internal/auth"
	authmodels "talenthunt/internal/auth/models"
	"talenthunt/internal/identity/models"
	id "talenthunt/pkg/domain"
	dErrors "talenthunt/pkg/domain-errors"
	"talenthunt/pkg/platform/httputil"
	"talenthunt/pkg/requestcontext"
)

// Service defines the identity operations the handler needs.
type Service interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	ChangePassword(ctx context.Context, actorID id.UserID, oldPassword, newPassword string) error
	Search(ctx context.Context, actorID id.UserID, query string) ([]*models.User, error)
}

// SessionManager issues sessions on login and revokes them on logout.
type SessionManager interface {
	Issue(ctx context.Context, userID id.UserID, username string) (string, *authmodels.Session, error)
	Revoke(ctx context.Context, sessionID id.SessionID) error
}

// Handler wires identity endpoints to the identity and auth services.
type Handler struct {
	service  Service
	sessions SessionManager
	recorder audit.Recorder
	logger   *slog.Logger
}

func New(service Service, sessions SessionManager, recorder audit.Recorder, logger *slog.Logger) *Handler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Handler{service: service, sessions: sessions, recorder: recorder, logger: logger}
}

// RegisterPublic mounts the endpoints reachable without a session.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/login", h.HandleLogin)
}

// RegisterProtected mounts the endpoints behind the session middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/logout", h.HandleLogout)
	r.Post("/password-change", h.HandlePasswordChange)
	r.Get("/search", h.HandleSearch)
}

// HandleLogin handles POST /login requests.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	token, session, err := h.sessions.Issue(ctx, user.ID, user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue session",
			"request_id", requestID,
			"user_id", user.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	auth.SetSessionCookie(w, token, session.ExpiresAt)
	h.recorder.Record(ctx, audit.Event{
		Kind:    audit.KindLogin,
		ActorID: user.ID.String(),
	})
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Username: user.Username})
}

// HandleLogout handles POST /logout requests. Logout always clears the
// cookie, even if the session record is already gone.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	sessionID := requestcontext.SessionID(ctx)

	if err := h.sessions.Revoke(ctx, sessionID); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke session",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sessionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	auth.ClearSessionCookie(w)
	h.recorder.Record(ctx, audit.Event{
		Kind:    audit.KindLogout,
		ActorID: userID.String(),
	})
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

// HandlePasswordChange handles POST /password-change requests.
func (h *Handler) HandlePasswordChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)

	req, ok := httputil.DecodeAndPrepare[PasswordChangeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		h.logger.WarnContext(ctx, "password change rejected",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.recorder.Record(ctx, audit.Event{
		Kind:    audit.KindPasswordChanged,
		ActorID: userID.String(),
	})
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "password changed"})
}

// HandleSearch handles GET /search?q= requests. A blank query is an error;
// clients redirect back instead of rendering an empty result page.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	query := r.URL.Query().Get("q")
	users, err := h.service.Search(ctx, userID, query)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeBadRequest) {
			h.logger.ErrorContext(ctx, "search failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SearchResponse{Results: FromUsers(users)})
}
