// Package handler exposes the review feed, review mutations, and voting.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identitymodels "talenthunt/internal/identity/models"
	"talenthunt/internal/review/models"
	reviewservice "talenthunt/internal/review/service"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/httputil"
	"talenthunt/pkg/requestcontext"
)

// Service defines the review operations the handler needs.
type Service interface {
	Create(ctx context.Context, actorID id.UserID, subjectUsername string, draft reviewservice.Draft) (*models.Review, error)
	Edit(ctx context.Context, actorID id.UserID, reviewID id.ReviewID, draft reviewservice.Draft) (*models.Review, error)
	Delete(ctx context.Context, actorID id.UserID, reviewID id.ReviewID) error
	Vote(ctx context.Context, actorID id.UserID, reviewID id.ReviewID, direction models.Direction) (*models.Review, models.VoteState, error)
	FindGivenTo(ctx context.Context, actorID, subjectID id.UserID) (*models.Review, error)
	ListAll(ctx context.Context) ([]*models.Review, error)
}

// SubjectResolver maps a username to an account for the review-on-pair
// route. Satisfied by the identity service.
type SubjectResolver interface {
	GetByUsername(ctx context.Context, username string) (*identitymodels.User, error)
}

// Handler wires review endpoints to the review service.
type Handler struct {
	service  Service
	subjects SubjectResolver
	logger   *slog.Logger
}

func New(service Service, subjects SubjectResolver, logger *slog.Logger) *Handler {
	return &Handler{service: service, subjects: subjects, logger: logger}
}

// Register mounts review endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/home", h.HandleFeed)
	r.Post("/home/vote", h.HandleVote)
	r.Post("/user/{username}/review", h.HandleSubmit)
	r.Post("/user/{username}/vote", h.HandleVote)
	r.Post("/edit/{reviewID}", h.HandleEdit)
	r.Post("/delete/{reviewID}", h.HandleDelete)
}

// HandleFeed handles GET /home requests: every review, oldest first.
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := requestcontext.UserID(ctx)

	reviews, err := h.service.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load review feed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FeedResponse{Reviews: FromReviews(reviews, viewer)})
}

// HandleSubmit handles POST /user/{username}/review requests. If the actor
// already reviewed the subject the submission amends the existing review, so
// the pair invariant holds no matter which form the client came from.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.UserID(ctx)
	username := chi.URLParam(r, "username")

	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	subject, err := h.subjects.GetByUsername(ctx, username)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	existing, err := h.service.FindGivenTo(ctx, actorID, subject.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var (
		review *models.Review
		status = http.StatusCreated
	)
	if existing != nil {
		review, err = h.service.Edit(ctx, actorID, existing.ID, req.ToDraft())
		status = http.StatusOK
	} else {
		review, err = h.service.Create(ctx, actorID, username, req.ToDraft())
	}
	if err != nil {
		h.logger.WarnContext(ctx, "review submission rejected",
			"request_id", requestID,
			"user_id", actorID,
			"subject", username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, status, FromReview(review, actorID))
}

// HandleEdit handles POST /edit/{reviewID} requests.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.UserID(ctx)

	reviewID, err := id.ParseReviewID(chi.URLParam(r, "reviewID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	review, err := h.service.Edit(ctx, actorID, reviewID, req.ToDraft())
	if err != nil {
		h.logger.WarnContext(ctx, "review edit rejected",
			"request_id", requestID,
			"user_id", actorID,
			"review_id", reviewID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromReview(review, actorID))
}

// HandleDelete handles POST /delete/{reviewID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := requestcontext.UserID(ctx)

	reviewID, err := id.ParseReviewID(chi.URLParam(r, "reviewID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, actorID, reviewID); err != nil {
		h.logger.WarnContext(ctx, "review delete rejected",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", actorID,
			"review_id", reviewID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "review deleted"})
}

// HandleVote handles POST /home/vote and POST /user/{username}/vote requests.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.UserID(ctx)

	req, ok := httputil.DecodeAndPrepare[VoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reviewID, err := id.ParseReviewID(req.ReviewID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	direction, err := models.ParseDirection(req.Direction)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	review, state, err := h.service.Vote(ctx, actorID, reviewID, direction)
	if err != nil {
		h.logger.WarnContext(ctx, "vote rejected",
			"request_id", requestID,
			"user_id", actorID,
			"review_id", reviewID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, VoteResponse{
		ReviewID: review.ID.String(),
		Score:    review.Score(),
		YourVote: string(state),
	})
}
