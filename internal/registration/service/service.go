// Package service implements the signup state machine: Anonymous →
// PendingVerification → Authenticated. Account records exist only after the
// emailed code is confirmed.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"talenthunt/internal/audit"
	identitymetrics "talenthunt/internal/identity/metrics"
	identitymodels "talenthunt/internal/identity/models"
	"talenthunt/internal/identity/secrets"
	identitystore "talenthunt/internal/identity/store"
	"talenthunt/internal/notification"
	profilemodels "talenthunt/internal/profile/models"
	profilestore "talenthunt/internal/profile/store"
	registrationmetrics "talenthunt/internal/registration/metrics"
	"talenthunt/internal/registration/models"
	"talenthunt/internal/registration/store"
	dErrors "talenthunt/pkg/domain-errors"
	"talenthunt/pkg/platform/sentinel"
	"talenthunt/pkg/requestcontext"
)

const minPasswordLength = 8

// Signup carries the fields submitted on the signup form.
type Signup struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	ContactNumber string
	Gender        string
}

// Service orchestrates the registration flow.
type Service struct {
	pending  store.PendingStore
	users    identitystore.UserStore
	profiles profilestore.ProfileStore
	sender   notification.Sender
	recorder audit.Recorder
	logger   *slog.Logger
	metrics  *registrationmetrics.Metrics
	identity *identitymetrics.Metrics
	tracer   trace.Tracer
	ttl      time.Duration
}

func New(
	pending store.PendingStore,
	users identitystore.UserStore,
	profiles profilestore.ProfileStore,
	sender notification.Sender,
	recorder audit.Recorder,
	ttl time.Duration,
	logger *slog.Logger,
	metrics *registrationmetrics.Metrics,
	identityMetrics *identitymetrics.Metrics,
) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		pending:  pending,
		users:    users,
		profiles: profiles,
		sender:   sender,
		recorder: recorder,
		logger:   logger,
		metrics:  metrics,
		identity: identityMetrics,
		tracer:   otel.Tracer("talenthunt/registration"),
		ttl:      ttl,
	}
}

// Start validates the signup, persists a pending record under an opaque
// token, and emails a 6-digit code. If the email cannot be sent the pending
// record is removed and the signup fails; nothing survives a failed Start.
//
// Errors: CodeInvalidInput on field shapes; CodeConflict when the email or
// contact number is already registered; CodeUnavailable when the code email
// fails.
func (s *Service) Start(ctx context.Context, signup Signup) (string, error) {
	ctx, span := s.tracer.Start(ctx, "registration.start")
	defer span.End()

	signup.Email = strings.ToLower(strings.TrimSpace(signup.Email))
	if err := validateSignup(signup); err != nil {
		return "", err
	}
	gender, err := profilemodels.ParseGender(signup.Gender)
	if err != nil {
		return "", err
	}

	if err := s.checkEmailAvailable(ctx, signup.Email); err != nil {
		return "", err
	}
	if signup.ContactNumber != "" {
		if err := s.checkContactAvailable(ctx, signup.ContactNumber); err != nil {
			return "", err
		}
	}

	passwordHash, err := secrets.Hash(signup.Password)
	if err != nil {
		return "", err
	}
	code, err := models.GenerateOTP()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
	}

	pending := &models.PendingSignup{
		Token:         uuid.NewString(),
		Email:         signup.Email,
		FirstName:     strings.TrimSpace(signup.FirstName),
		LastName:      strings.TrimSpace(signup.LastName),
		ContactNumber: signup.ContactNumber,
		Gender:        string(gender),
		PasswordHash:  passwordHash,
		Code:          code,
		CreatedAt:     requestcontext.Now(ctx),
	}

	if err := s.pending.Create(ctx, pending, s.ttl); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store pending signup")
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.ttl.Minutes()))
	if err := s.sender.Send(ctx, pending.Email, "Verify your account", body); err != nil {
		if delErr := s.pending.Delete(ctx, pending.Token); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove pending signup after send failure", "error", delErr)
		}
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to send verification email")
	}

	s.incrementStarted()
	s.recorder.Record(ctx, audit.Event{
		Kind:    audit.KindSignupStarted,
		Details: map[string]string{"email": pending.Email},
	})
	s.logger.InfoContext(ctx, "signup started", "email", pending.Email)
	return pending.Token, nil
}

// Verify confirms the emailed code and creates the account. A wrong code
// leaves the pending record intact for retry; a missing or expired record
// sends the caller back to signup.
func (s *Service) Verify(ctx context.Context, token, code string) (*identitymodels.User, error) {
	ctx, span := s.tracer.Start(ctx, "registration.verify")
	defer span.End()

	if token == "" || code == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "registration token and otp are required")
	}

	pending, err := s.pending.Find(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementVerification("expired")
			return nil, dErrors.New(dErrors.CodeNotFound, "signup session has expired, please sign up again")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pending signup")
	}

	if !pending.CodeMatches(code) {
		s.incrementVerification("wrong_code")
		return nil, dErrors.NewField(dErrors.CodeBadRequest, "otp", "the otp entered is incorrect")
	}

	now := requestcontext.Now(ctx)
	user, err := identitymodels.NewUser(pending.FirstName, pending.LastName, pending.Email, pending.PasswordHash, now)
	if err != nil {
		return nil, err
	}

	if err := s.users.CreateIfEmailAvailable(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.NewField(dErrors.CodeConflict, "email", "this email id is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	s.createProfile(ctx, user, pending, now)

	if err := s.pending.Delete(ctx, token); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to delete consumed pending signup", "error", err)
	}

	s.incrementVerification("success")
	s.incrementUsersCreated()
	s.recorder.Record(ctx, audit.Event{
		Kind:    audit.KindSignupVerified,
		ActorID: user.ID.String(),
		Details: map[string]string{"username": user.Username},
	})
	s.logger.InfoContext(ctx, "signup verified", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// createProfile attaches the profile fields collected at signup. The account
// already exists at this point; a contact-number race drops the number
// rather than failing the whole registration.
func (s *Service) createProfile(ctx context.Context, user *identitymodels.User, pending *models.PendingSignup, now time.Time) {
	profile, err := s.profiles.GetOrCreate(ctx, user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create profile at signup", "user_id", user.ID, "error", err)
		return
	}

	profile.ContactNumber = pending.ContactNumber
	profile.Gender = profilemodels.Gender(pending.Gender)
	profile.UpdatedAt = now

	if err := s.profiles.Save(ctx, profile); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.logger.WarnContext(ctx, "contact number taken during verification, dropped", "user_id", user.ID)
			profile.ContactNumber = ""
			if err := s.profiles.Save(ctx, profile); err != nil {
				s.logger.ErrorContext(ctx, "failed to save profile at signup", "user_id", user.ID, "error", err)
			}
			return
		}
		s.logger.ErrorContext(ctx, "failed to save profile at signup", "user_id", user.ID, "error", err)
	}
}

func (s *Service) checkEmailAvailable(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return dErrors.NewField(dErrors.CodeConflict, "email", "this email id is already registered")
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
	}
	return nil
}

func (s *Service) checkContactAvailable(ctx context.Context, contact string) error {
	_, err := s.profiles.FindByContactNumber(ctx, contact)
	if err == nil {
		return dErrors.NewField(dErrors.CodeConflict, "contact_number", "this contact number is already registered")
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check contact number")
	}
	return nil
}

func validateSignup(signup Signup) error {
	if strings.TrimSpace(signup.FirstName) == "" {
		return dErrors.NewField(dErrors.CodeInvalidInput, "first_name", "first_name is required")
	}
	if strings.TrimSpace(signup.LastName) == "" {
		return dErrors.NewField(dErrors.CodeInvalidInput, "last_name", "last_name is required")
	}
	if err := identitymodels.ValidateEmail(signup.Email); err != nil {
		return err
	}
	if len(signup.Password) < minPasswordLength {
		return dErrors.NewField(dErrors.CodeInvalidInput, "password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if signup.ContactNumber != "" {
		if err := profilemodels.ValidateContactNumber(signup.ContactNumber); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) incrementStarted() {
	if s.metrics != nil {
		s.metrics.IncrementStarted()
	}
}

func (s *Service) incrementVerification(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementVerification(outcome)
	}
}

func (s *Service) incrementUsersCreated() {
	if s.identity != nil {
		s.identity.IncrementUsersCreated()
	}
}
