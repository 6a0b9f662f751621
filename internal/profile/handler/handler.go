// Package handler exposes the profile page and the profile update endpoints.
package handler

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	identitymodels "talenthunt/internal/identity/models"
	profilemodels "talenthunt/internal/profile/models"
	profileservice "talenthunt/internal/profile/service"
	reviewhandler "talenthunt/internal/review/handler"
	reviewmodels "talenthunt/internal/review/models"
	id "talenthunt/pkg/domain"
	dErrors "talenthunt/pkg/domain-errors"
	"talenthunt/pkg/platform/httputil"
	"talenthunt/pkg/requestcontext"
)

const maxPhotoBytes = 5 << 20

var allowedPhotoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Service defines the profile operations the handler needs.
type Service interface {
	GetOrCreate(ctx context.Context, userID id.UserID) (*profilemodels.Profile, error)
	UpdateDetails(ctx context.Context, actorID id.UserID, update profileservice.DetailsUpdate) (*profilemodels.Profile, error)
	UpdateBio(ctx context.Context, actorID id.UserID, bio string) (*profilemodels.Profile, error)
	UpdatePhoto(ctx context.Context, actorID id.UserID, ext string, photo io.Reader) (*profilemodels.Profile, error)
	RemovePhoto(ctx context.Context, actorID id.UserID) (*profilemodels.Profile, error)
	Photo(ctx context.Context, ref string) (io.ReadCloser, error)
}

// IdentityService resolves usernames for the profile page.
type IdentityService interface {
	GetByUsername(ctx context.Context, username string) (*identitymodels.User, error)
}

// ReviewService supplies the reviews shown on the profile page.
type ReviewService interface {
	ListReceived(ctx context.Context, subjectID id.UserID) ([]*reviewmodels.Review, error)
	FindGivenTo(ctx context.Context, actorID, subjectID id.UserID) (*reviewmodels.Review, error)
}

// Handler wires profile endpoints to the profile, identity, and review
// services.
type Handler struct {
	service  Service
	identity IdentityService
	reviews  ReviewService
	logger   *slog.Logger
}

func New(service Service, identity IdentityService, reviews ReviewService, logger *slog.Logger) *Handler {
	return &Handler{service: service, identity: identity, reviews: reviews, logger: logger}
}

// Register mounts profile endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/user/{username}", h.HandlePage)
	r.Get("/user/{username}/photo", h.HandlePhoto)
	r.Post("/update/details", h.HandleUpdateDetails)
	r.Post("/update/bio", h.HandleUpdateBio)
	r.Post("/update/image", h.HandleUpdateImage)
}

// HandlePage handles GET /user/{username} requests: the subject's identity,
// profile, and reviews, plus the viewer's own review of them for form
// pre-fill.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := requestcontext.UserID(ctx)
	username := chi.URLParam(r, "username")

	subject, err := h.identity.GetByUsername(ctx, username)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	profile, err := h.service.GetOrCreate(ctx, subject.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load profile",
			"request_id", requestcontext.RequestID(ctx),
			"username", username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	received, err := h.reviews.ListReceived(ctx, subject.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page := PageResponse{
		User:            FromUser(subject),
		Profile:         FromProfile(profile),
		ReviewsReceived: reviewhandler.FromReviews(received, viewer),
		IsSelf:          viewer == subject.ID,
	}

	if !page.IsSelf {
		mine, err := h.reviews.FindGivenTo(ctx, viewer, subject.ID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if mine != nil {
			resp := reviewhandler.FromReview(mine, viewer)
			page.YourReview = &resp
		}
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// HandlePhoto handles GET /user/{username}/photo requests, streaming the
// stored image.
func (h *Handler) HandlePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")

	subject, err := h.identity.GetByUsername(ctx, username)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	profile, err := h.service.GetOrCreate(ctx, subject.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	photo, err := h.service.Photo(ctx, profile.PhotoRef)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer photo.Close()

	if contentType := mime.TypeByExtension(path.Ext(profile.PhotoRef)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, photo); err != nil {
		h.logger.WarnContext(ctx, "photo stream interrupted",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// HandleUpdateDetails handles POST /update/details requests.
func (h *Handler) HandleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.UserID(ctx)

	req, ok := httputil.DecodeAndPrepare[DetailsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.UpdateDetails(ctx, actorID, req.ToUpdate())
	if err != nil {
		h.logger.WarnContext(ctx, "details update rejected",
			"request_id", requestID,
			"user_id", actorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromProfile(profile))
}

// HandleUpdateBio handles POST /update/bio requests.
func (h *Handler) HandleUpdateBio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.UserID(ctx)

	req, ok := httputil.DecodeAndPrepare[BioRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.UpdateBio(ctx, actorID, req.Bio)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromProfile(profile))
}

// HandleUpdateImage handles POST /update/image requests. The photo arrives
// as the "image" part of a multipart form; a "remove" field set to "true"
// clears the current photo instead.
func (h *Handler) HandleUpdateImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.UserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)

	if r.FormValue("remove") == "true" {
		profile, err := h.service.RemovePhoto(ctx, actorID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, FromProfile(profile))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.logger.WarnContext(ctx, "invalid image upload",
			"request_id", requestID,
			"user_id", actorID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.NewField(dErrors.CodeInvalidInput, "image", "a valid image file is required"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	if !allowedPhotoExts[ext] {
		httputil.WriteError(w, dErrors.NewField(dErrors.CodeInvalidInput, "image", "image must be jpg, jpeg, png, gif, or webp"))
		return
	}

	profile, err := h.service.UpdatePhoto(ctx, actorID, ext, file)
	if err != nil {
		h.logger.WarnContext(ctx, "image update rejected",
			"request_id", requestID,
			"user_id", actorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromProfile(profile))
}
