// Package service orchestrates profile reads and updates. Name changes touch
// the identity aggregate; everything else lives on the profile itself.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"talenthunt/internal/audit"
	identitystore "talenthunt/internal/identity/store"
	"talenthunt/internal/media"
	profilemetrics "talenthunt/internal/profile/metrics"
	"talenthunt/internal/profile/models"
	"talenthunt/internal/profile/store"
	id "talenthunt/pkg/domain"
	dErrors "talenthunt/pkg/domain-errors"
	"talenthunt/pkg/platform/sentinel"
	"talenthunt/pkg/requestcontext"
)

// DetailsUpdate carries the editable identity and profile fields submitted
// together from the details form.
type DetailsUpdate struct {
	FirstName     string
	LastName      string
	ContactNumber string
	Gender        string
}

// Service implements profile use cases.
type Service struct {
	profiles store.ProfileStore
	users    identitystore.UserStore
	photos   media.Store
	recorder audit.Recorder
	logger   *slog.Logger
	metrics  *profilemetrics.Metrics
}

func New(profiles store.ProfileStore, users identitystore.UserStore, photos media.Store, recorder audit.Recorder, logger *slog.Logger, metrics *profilemetrics.Metrics) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{profiles: profiles, users: users, photos: photos, recorder: recorder, logger: logger, metrics: metrics}
}

// GetOrCreate returns the user's profile, lazily creating an empty one. Users
// registered before profiles existed get one on first access.
func (s *Service) GetOrCreate(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	if userID.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return profile, nil
}

// UpdateDetails applies the combined details form: first/last name on the
// identity, contact number and gender on the profile. The username is never
// re-derived; it stays as minted at registration.
func (s *Service) UpdateDetails(ctx context.Context, actorID id.UserID, update DetailsUpdate) (*models.Profile, error) {
	if actorID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	gender, err := models.ParseGender(update.Gender)
	if err != nil {
		return nil, err
	}
	if update.ContactNumber != "" {
		if err := models.ValidateContactNumber(update.ContactNumber); err != nil {
			return nil, err
		}
		if err := s.checkContactAvailable(ctx, actorID, update.ContactNumber); err != nil {
			return nil, err
		}
	}

	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, wrapProfileErr(err)
	}
	if err := user.Rename(update.FirstName, update.LastName); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, wrapProfileErr(err)
	}

	profile, err := s.profiles.GetOrCreate(ctx, actorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	profile.ContactNumber = update.ContactNumber
	profile.Gender = gender
	profile.UpdatedAt = requestcontext.Now(ctx)

	if err := s.profiles.Save(ctx, profile); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.NewField(dErrors.CodeConflict, "contact_number", "this contact number is already registered")
		}
		return nil, wrapProfileErr(err)
	}

	s.incrementUpdate("details")
	s.recordUpdate(ctx, actorID, "details")
	s.logger.InfoContext(ctx, "profile details updated", "user_id", actorID)
	return profile, nil
}

// UpdateBio replaces the bio text.
func (s *Service) UpdateBio(ctx context.Context, actorID id.UserID, bio string) (*models.Profile, error) {
	if actorID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	profile, err := s.profiles.GetOrCreate(ctx, actorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	if err := profile.SetBio(bio); err != nil {
		return nil, err
	}
	profile.UpdatedAt = requestcontext.Now(ctx)

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, wrapProfileErr(err)
	}

	s.incrementUpdate("bio")
	s.recordUpdate(ctx, actorID, "bio")
	return profile, nil
}

// UpdatePhoto stores a new profile photo and releases the previous one. The
// old object is deleted only after the new reference is persisted, so a
// failed save never orphans the profile's current photo.
func (s *Service) UpdatePhoto(ctx context.Context, actorID id.UserID, ext string, photo io.Reader) (*models.Profile, error) {
	if actorID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if photo == nil {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "image", "image file is required")
	}

	profile, err := s.profiles.GetOrCreate(ctx, actorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	key := media.NewKey(requestcontext.Now(ctx), ext)
	if err := s.photos.Put(ctx, key, photo); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store photo")
	}

	previous := profile.PhotoRef
	profile.PhotoRef = key
	profile.UpdatedAt = requestcontext.Now(ctx)

	if err := s.profiles.Save(ctx, profile); err != nil {
		if delErr := s.photos.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to clean up photo after save failure", "key", key, "error", delErr)
		}
		return nil, wrapProfileErr(err)
	}

	if previous != "" {
		if err := s.photos.Delete(ctx, previous); err != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced photo", "key", previous, "error", err)
		}
	}

	s.incrementUpdate("photo")
	s.incrementPhotoUpload()
	s.recordUpdate(ctx, actorID, "photo")
	s.logger.InfoContext(ctx, "profile photo updated", "user_id", actorID, "photo_ref", key)
	return profile, nil
}

// RemovePhoto clears the profile photo and releases the stored object. The
// reference is cleared first; a failed delete leaves at worst an orphaned
// blob, never a profile pointing at nothing. Removing an absent photo is a
// no-op.
func (s *Service) RemovePhoto(ctx context.Context, actorID id.UserID) (*models.Profile, error) {
	if actorID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	profile, err := s.profiles.GetOrCreate(ctx, actorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	previous := profile.PhotoRef
	if previous == "" {
		return profile, nil
	}

	profile.PhotoRef = ""
	profile.UpdatedAt = requestcontext.Now(ctx)
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, wrapProfileErr(err)
	}

	if err := s.photos.Delete(ctx, previous); err != nil {
		s.logger.WarnContext(ctx, "failed to delete removed photo", "key", previous, "error", err)
	}

	s.incrementUpdate("photo")
	s.recordUpdate(ctx, actorID, "photo_removed")
	s.logger.InfoContext(ctx, "profile photo removed", "user_id", actorID)
	return profile, nil
}

// Photo streams the stored photo for a profile reference.
func (s *Service) Photo(ctx context.Context, ref string) (io.ReadCloser, error) {
	if ref == "" {
		return nil, dErrors.New(dErrors.CodeNotFound, "photo not found")
	}
	rc, err := s.photos.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "photo not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load photo")
	}
	return rc, nil
}

// IsContactNumberTaken reports whether any profile holds the number. Used by
// registration to reject duplicates before creating the pending signup.
func (s *Service) IsContactNumberTaken(ctx context.Context, contact string) (bool, error) {
	if contact == "" {
		return false, nil
	}
	_, err := s.profiles.FindByContactNumber(ctx, contact)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check contact number")
	}
	return true, nil
}

func (s *Service) checkContactAvailable(ctx context.Context, actorID id.UserID, contact string) error {
	existing, err := s.profiles.FindByContactNumber(ctx, contact)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check contact number")
	}
	if existing.UserID != actorID {
		return dErrors.NewField(dErrors.CodeConflict, "contact_number", "this contact number is already registered")
	}
	return nil
}

func (s *Service) recordUpdate(ctx context.Context, actorID id.UserID, kind string) {
	s.recorder.Record(ctx, audit.Event{
		Kind:    audit.KindProfileUpdated,
		ActorID: actorID.String(),
		Details: map[string]string{"update": kind},
	})
}

func (s *Service) incrementUpdate(kind string) {
	if s.metrics != nil {
		s.metrics.IncrementUpdate(kind)
	}
}

func (s *Service) incrementPhotoUpload() {
	if s.metrics != nil {
		s.metrics.IncrementPhotoUpload()
	}
}

func wrapProfileErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "profile not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.NewField(dErrors.CodeConflict, "contact_number", "this contact number is already registered")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "profile store failure")
	}
}
