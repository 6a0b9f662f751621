package user

import (
	"context"
	"sort"
	"strings"
	"sync"

	"talenthunt/internal/identity/models"
	"talenthunt/internal/identity/store"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded user store for tests and local development.
// Uniqueness checks happen under the lock so the atomicity contract matches
// the postgres implementation.
type InMemory struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[id.UserID]*models.User)}
}

func (s *InMemory) CreateIfEmailAvailable(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == email {
			return sentinel.ErrAlreadyUsed
		}
		if existing.Username == user.Username {
			return sentinel.ErrAlreadyUsed
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *InMemory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *InMemory) Search(_ context.Context, filter store.SearchFilter) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.User
	for _, u := range s.users {
		if u.Admin || u.ID == filter.ExcludeUserID {
			continue
		}
		if !matches(u, filter) {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	sortByCreation(out)
	return out, nil
}

func matches(u *models.User, filter store.SearchFilter) bool {
	first := strings.ToLower(u.FirstName)
	last := strings.ToLower(u.LastName)

	if filter.Either != "" {
		q := strings.ToLower(filter.Either)
		return strings.Contains(first, q) || strings.Contains(last, q)
	}
	return strings.Contains(first, strings.ToLower(filter.First)) &&
		strings.Contains(last, strings.ToLower(filter.Last))
}

func sortByCreation(users []*models.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Username < users[j].Username
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}
