// Package service orchestrates the review lifecycle: create, edit, delete,
// vote, and the list queries backing the home and profile pages.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"talenthunt/internal/audit"
	identitystore "talenthunt/internal/identity/store"
	reviewmetrics "talenthunt/internal/review/metrics"
	"talenthunt/internal/review/models"
	"talenthunt/internal/review/policy"
	"talenthunt/internal/review/store"
	id "talenthunt/pkg/domain"
	dErrors "talenthunt/pkg/domain-errors"
	"talenthunt/pkg/platform/sentinel"
	"talenthunt/pkg/requestcontext"
)

// Draft carries the caller-editable review fields.
type Draft struct {
	Ratings   models.Ratings
	Texts     models.Texts
	Anonymous bool
}

// Service implements review use cases over the review store.
type Service struct {
	reviews  store.ReviewStore
	users    identitystore.UserStore
	recorder audit.Recorder
	logger   *slog.Logger
	metrics  *reviewmetrics.Metrics
	tracer   trace.Tracer

	anonymousSentinel string
}

func New(reviews store.ReviewStore, users identitystore.UserStore, recorder audit.Recorder, anonymousSentinel string, logger *slog.Logger, metrics *reviewmetrics.Metrics) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		reviews:           reviews,
		users:             users,
		recorder:          recorder,
		logger:            logger,
		metrics:           metrics,
		tracer:            otel.Tracer("talenthunt/review"),
		anonymousSentinel: anonymousSentinel,
	}
}

// Create records a new review of the subject by the actor.
//
// Errors: CodeBadRequest on self-review or invalid ratings; CodeConflict when
// the actor already reviewed the subject (the caller should route to edit);
// CodeNotFound for an unknown subject.
func (s *Service) Create(ctx context.Context, actorID id.UserID, subjectUsername string, draft Draft) (*models.Review, error) {
	ctx, span := s.tracer.Start(ctx, "review.create")
	defer span.End()

	if actorID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	subject, err := s.users.FindByUsername(ctx, subjectUsername)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up subject")
	}
	if subject.ID == actorID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "you cannot review yourself")
	}

	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up reviewer")
	}

	review, err := models.NewReview(actorID, subject.ID, draft.Ratings, draft.Texts, draft.Anonymous,
		actor.Username, s.anonymousSentinel, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.reviews.CreateIfPairAvailable(ctx, review); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "you have already reviewed this user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create review")
	}

	span.SetAttributes(attribute.String("review.id", review.ID.String()))
	s.incrementReview("created")
	s.recorder.Record(ctx, audit.Event{
		Kind:     audit.KindReviewCreated,
		ActorID:  actorID.String(),
		TargetID: subject.ID.String(),
		Details:  map[string]string{"review_id": review.ID.String()},
	})
	s.logger.InfoContext(ctx, "review created",
		"review_id", review.ID,
		"reviewer_id", actorID,
		"subject_id", subject.ID,
		"anonymous", review.Anonymous,
	)
	return review, nil
}

// Edit amends an existing review. Only the original reviewer may edit;
// anonymity never changes who is authorized.
func (s *Service) Edit(ctx context.Context, actorID id.UserID, reviewID id.ReviewID, draft Draft) (*models.Review, error) {
	ctx, span := s.tracer.Start(ctx, "review.edit")
	defer span.End()

	review, err := s.loadForActor(ctx, actorID, reviewID, policy.CanEdit)
	if err != nil {
		return nil, err
	}

	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up reviewer")
	}

	if err := review.Amend(draft.Ratings, draft.Texts, draft.Anonymous,
		actor.Username, s.anonymousSentinel, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, wrapReviewErr(err)
	}

	s.incrementReview("edited")
	s.recorder.Record(ctx, audit.Event{
		Kind:     audit.KindReviewEdited,
		ActorID:  actorID.String(),
		TargetID: review.SubjectID.String(),
		Details:  map[string]string{"review_id": review.ID.String()},
	})
	s.logger.InfoContext(ctx, "review edited", "review_id", review.ID, "reviewer_id", actorID)
	return review, nil
}

// Delete removes a review permanently. Same authorization as Edit.
func (s *Service) Delete(ctx context.Context, actorID id.UserID, reviewID id.ReviewID) error {
	ctx, span := s.tracer.Start(ctx, "review.delete")
	defer span.End()

	review, err := s.loadForActor(ctx, actorID, reviewID, policy.CanDelete)
	if err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return wrapReviewErr(err)
	}

	s.incrementReview("deleted")
	s.recorder.Record(ctx, audit.Event{
		Kind:     audit.KindReviewDeleted,
		ActorID:  actorID.String(),
		TargetID: review.SubjectID.String(),
		Details:  map[string]string{"review_id": reviewID.String()},
	})
	s.logger.InfoContext(ctx, "review deleted", "review_id", reviewID, "reviewer_id", actorID)
	return nil
}

// Vote applies the toggle semantics and returns the review with the updated
// tally plus the actor's resulting state.
func (s *Service) Vote(ctx context.Context, actorID id.UserID, reviewID id.ReviewID, direction models.Direction) (*models.Review, models.VoteState, error) {
	ctx, span := s.tracer.Start(ctx, "review.vote")
	defer span.End()

	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, models.VoteNone, wrapReviewErr(err)
	}
	if !policy.CanVote(actorID, review) {
		return nil, models.VoteNone, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	state := review.ApplyVote(actorID, direction)
	if err := s.reviews.SetVote(ctx, reviewID, actorID, state, requestcontext.Now(ctx)); err != nil {
		return nil, models.VoteNone, wrapReviewErr(err)
	}

	s.incrementVote(string(state))
	s.recorder.Record(ctx, audit.Event{
		Kind:     audit.KindReviewVoted,
		ActorID:  actorID.String(),
		TargetID: review.SubjectID.String(),
		Details: map[string]string{
			"review_id": reviewID.String(),
			"direction": direction.String(),
			"result":    string(state),
		},
	})
	return review, state, nil
}

// GetByID fetches a single review.
func (s *Service) GetByID(ctx context.Context, reviewID id.ReviewID) (*models.Review, error) {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, wrapReviewErr(err)
	}
	return review, nil
}

// FindGivenTo returns the actor's existing review of the subject, or nil if
// none exists. Callers use it to pre-fill the edit form.
func (s *Service) FindGivenTo(ctx context.Context, actorID, subjectID id.UserID) (*models.Review, error) {
	review, err := s.reviews.FindByPair(ctx, actorID, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up review")
	}
	return review, nil
}

// ListReceived returns reviews written about the subject.
func (s *Service) ListReceived(ctx context.Context, subjectID id.UserID) ([]*models.Review, error) {
	reviews, err := s.reviews.ListReceived(ctx, subjectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reviews")
	}
	return reviews, nil
}

// ListGiven returns reviews the reviewer has written.
func (s *Service) ListGiven(ctx context.Context, reviewerID id.UserID) ([]*models.Review, error) {
	reviews, err := s.reviews.ListGiven(ctx, reviewerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reviews")
	}
	return reviews, nil
}

// ListAll returns every review, oldest first. Backs the home feed.
func (s *Service) ListAll(ctx context.Context) ([]*models.Review, error) {
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reviews")
	}
	return reviews, nil
}

// loadForActor fetches the review and applies an ownership predicate.
// Unauthorized actors get CodeForbidden regardless of the review's anonymity.
func (s *Service) loadForActor(ctx context.Context, actorID id.UserID, reviewID id.ReviewID, allowed func(id.UserID, *models.Review) bool) (*models.Review, error) {
	if actorID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, wrapReviewErr(err)
	}
	if !allowed(actorID, review) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the reviewer may modify this review")
	}
	return review, nil
}

func (s *Service) incrementReview(action string) {
	if s.metrics != nil {
		s.metrics.IncrementReview(action)
	}
}

func (s *Service) incrementVote(result string) {
	if s.metrics != nil {
		s.metrics.IncrementVote(result)
	}
}

func wrapReviewErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "review not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "you have already reviewed this user")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "review store failure")
	}
}
