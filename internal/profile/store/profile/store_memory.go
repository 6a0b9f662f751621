package profile

import (
	"context"
	"sync"

	"talenthunt/internal/profile/models"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/sentinel"
	"talenthunt/pkg/requestcontext"
)

// InMemory is a mutex-guarded profile store for tests and local development.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*models.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.UserID]*models.Profile)}
}

func (s *InMemory) GetOrCreate(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[userID]; ok {
		clone := *p
		return &clone, nil
	}

	p := models.NewProfile(userID, requestcontext.Now(ctx))
	clone := *p
	s.profiles[userID] = &clone
	return p, nil
}

func (s *InMemory) FindByUserID(_ context.Context, userID id.UserID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *InMemory) FindByContactNumber(_ context.Context, contact string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if contact == "" {
		return nil, sentinel.ErrNotFound
	}
	for _, p := range s.profiles {
		if p.ContactNumber == contact {
			clone := *p
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Save(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile.ContactNumber != "" {
		for userID, existing := range s.profiles {
			if userID != profile.UserID && existing.ContactNumber == profile.ContactNumber {
				return sentinel.ErrAlreadyUsed
			}
		}
	}

	clone := *profile
	s.profiles[profile.UserID] = &clone
	return nil
}
