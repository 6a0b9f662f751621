// Package service manages authenticated sessions: issuance on login or
// verified signup, validation on every request, revocation on logout.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"talenthunt/internal/auth/device"
	"talenthunt/internal/auth/models"
	"talenthunt/internal/auth/store"
	jwttoken "talenthunt/internal/jwt_token"
	id "talenthunt/pkg/domain"
	dErrors "talenthunt/pkg/domain-errors"
	"talenthunt/pkg/platform/sentinel"
	"talenthunt/pkg/requestcontext"
)

// Identity is what the middleware injects into the request context after a
// token passes validation.
type Identity struct {
	UserID    id.UserID
	Username  string
	SessionID id.SessionID
}

// Service issues and validates session tokens backed by a server-side
// session record, so logout takes effect immediately even while the JWT is
// still unexpired.
type Service struct {
	sessions store.SessionStore
	tokens   *jwttoken.JWTService
	ttl      time.Duration
	logger   *slog.Logger
}

func New(sessions store.SessionStore, tokens *jwttoken.JWTService, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{sessions: sessions, tokens: tokens, ttl: ttl, logger: logger}
}

// Issue creates a session for the user and returns the signed cookie token.
// Device and client metadata come from the request context.
func (s *Service) Issue(ctx context.Context, userID id.UserID, username string) (string, *models.Session, error) {
	now := requestcontext.Now(ctx)
	session := &models.Session{
		ID:        id.NewSessionID(),
		UserID:    userID,
		Username:  username,
		Device:    device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		ClientIP:  requestcontext.ClientIP(ctx),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	token, err := s.tokens.GenerateSessionToken(uuid.UUID(userID), username, uuid.UUID(session.ID), s.ttl)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}

	s.logger.InfoContext(ctx, "session issued",
		"user_id", userID,
		"session_id", session.ID,
		"device", session.Device,
	)
	return token, session, nil
}

// Validate checks the token signature and the backing session's liveness.
func (s *Service) Validate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if !session.IsLive(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session has been revoked or expired")
	}

	return &Identity{
		UserID:    userID,
		Username:  claims.Username,
		SessionID: sessionID,
	}, nil
}

// Revoke terminates a session (logout). Revoking an unknown session is not
// an error; the caller is logged out either way.
func (s *Service) Revoke(ctx context.Context, sessionID id.SessionID) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	s.logger.InfoContext(ctx, "session revoked", "session_id", sessionID)
	return nil
}
