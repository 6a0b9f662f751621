package review

import (
	"context"
	"sort"
	"sync"
	"time"

	"talenthunt/internal/review/models"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded review store for tests and local development.
// Pair uniqueness is checked under the lock so the atomicity contract matches
// the postgres implementation.
type InMemory struct {
	mu      sync.RWMutex
	reviews map[id.ReviewID]*models.Review
}

func NewInMemory() *InMemory {
	return &InMemory{reviews: make(map[id.ReviewID]*models.Review)}
}

func (s *InMemory) CreateIfPairAvailable(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.reviews {
		if existing.ReviewerID == review.ReviewerID && existing.SubjectID == review.SubjectID {
			return sentinel.ErrAlreadyUsed
		}
	}

	s.reviews[review.ID] = clone(review)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, reviewID id.ReviewID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[reviewID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(r), nil
}

func (s *InMemory) FindByPair(_ context.Context, reviewerID, subjectID id.UserID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reviews {
		if r.ReviewerID == reviewerID && r.SubjectID == subjectID {
			return clone(r), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.reviews[review.ID]
	if !ok {
		return sentinel.ErrNotFound
	}

	existing.Ratings = review.Ratings
	existing.Texts = review.Texts
	existing.Anonymous = review.Anonymous
	existing.DisplayName = review.DisplayName
	existing.UpdatedAt = review.UpdatedAt
	return nil
}

func (s *InMemory) Delete(_ context.Context, reviewID id.ReviewID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[reviewID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.reviews, reviewID)
	return nil
}

func (s *InMemory) SetVote(_ context.Context, reviewID id.ReviewID, voterID id.UserID, state models.VoteState, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[reviewID]
	if !ok {
		return sentinel.ErrNotFound
	}

	delete(r.Upvoters, voterID)
	delete(r.Downvoters, voterID)
	switch state {
	case models.VoteUp:
		r.Upvoters[voterID] = struct{}{}
	case models.VoteDown:
		r.Downvoters[voterID] = struct{}{}
	}
	return nil
}

func (s *InMemory) ListReceived(_ context.Context, subjectID id.UserID) ([]*models.Review, error) {
	return s.list(func(r *models.Review) bool { return r.SubjectID == subjectID }), nil
}

func (s *InMemory) ListGiven(_ context.Context, reviewerID id.UserID) ([]*models.Review, error) {
	return s.list(func(r *models.Review) bool { return r.ReviewerID == reviewerID }), nil
}

func (s *InMemory) ListAll(_ context.Context) ([]*models.Review, error) {
	return s.list(func(*models.Review) bool { return true }), nil
}

func (s *InMemory) list(match func(*models.Review) bool) []*models.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Review
	for _, r := range s.reviews {
		if match(r) {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func clone(r *models.Review) *models.Review {
	c := *r
	c.Upvoters = make(map[id.UserID]struct{}, len(r.Upvoters))
	for voter := range r.Upvoters {
		c.Upvoters[voter] = struct{}{}
	}
	c.Downvoters = make(map[id.UserID]struct{}, len(r.Downvoters))
	for voter := range r.Downvoters {
		c.Downvoters[voter] = struct{}{}
	}
	return &c
}
