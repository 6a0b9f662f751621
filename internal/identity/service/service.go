// Package service orchestrates identity operations: authentication, password
// changes, lookups, and keyword search.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	identitymetrics "talenthunt/internal/identity/metrics"
	"talenthunt/internal/identity/models"
	"talenthunt/internal/identity/secrets"
	"talenthunt/internal/identity/store"
	id "talenthunt/pkg/domain"
	dErrors "talenthunt/pkg/domain-errors"
	"talenthunt/pkg/platform/sentinel"
)

// Service implements identity use cases over the user store.
type Service struct {
	users   store.UserStore
	logger  *slog.Logger
	metrics *identitymetrics.Metrics
}

func New(users store.UserStore, logger *slog.Logger, metrics *identitymetrics.Metrics) *Service {
	return &Service{users: users, logger: logger, metrics: metrics}
}

// Authenticate verifies an email/password pair and returns the account.
//
// Errors: CodeUnauthorized for unknown email or wrong password; the message
// distinguishes the two because the original product surfaces field-level
// errors on the login form.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementLogin("failure")
			return nil, dErrors.NewField(dErrors.CodeUnauthorized, "email", "this email id is not registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}

	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.incrementLogin("failure")
			return nil, dErrors.NewField(dErrors.CodeUnauthorized, "password", "the password entered is either incorrect or invalid")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	s.incrementLogin("success")
	return user, nil
}

// ChangePassword verifies the old password and stores a hash of the new one.
func (s *Service) ChangePassword(ctx context.Context, actorID id.UserID, oldPassword, newPassword string) error {
	if actorID.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if newPassword == "" {
		return dErrors.NewField(dErrors.CodeInvalidInput, "new_password", "new password is required")
	}

	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return wrapUserErr(err)
	}

	if err := secrets.Verify(oldPassword, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return dErrors.NewField(dErrors.CodeUnauthorized, "old_password", "the password entered is either incorrect or invalid")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	hash, err := secrets.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.users.Update(ctx, user); err != nil {
		return wrapUserErr(err)
	}

	s.incrementPasswordChanged()
	s.logger.InfoContext(ctx, "password changed", "user_id", user.ID)
	return nil
}

// GetByUsername fetches an account by its generated handle.
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "username is required")
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

// GetByID fetches an account by identifier.
func (s *Service) GetByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

// Search runs the keyword search over first/last names.
//
// Token rules: two or more tokens require token one to match the first name
// AND token two the last name; a single token matches either. The acting
// user and admin accounts never appear. Blank queries are rejected so the
// caller redirects instead of rendering an empty result page.
func (s *Service) Search(ctx context.Context, actorID id.UserID, query string) ([]*models.User, error) {
	start := time.Now()
	defer s.observeSearch(start)

	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil, dErrors.NewField(dErrors.CodeBadRequest, "q", "search query cannot be empty")
	}

	filter := store.SearchFilter{ExcludeUserID: actorID}
	if len(tokens) >= 2 {
		filter.First = tokens[0]
		filter.Last = tokens[1]
	} else {
		filter.Either = tokens[0]
	}

	users, err := s.users.Search(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search users")
	}
	return users, nil
}

func (s *Service) incrementLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(outcome)
	}
}

func (s *Service) incrementPasswordChanged() {
	if s.metrics != nil {
		s.metrics.IncrementPasswordChanged()
	}
}

func (s *Service) observeSearch(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSearch(start)
	}
}

func wrapUserErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "user store failure")
	}
}
