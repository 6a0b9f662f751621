package pending

import (
	"context"
	"sync"
	"time"

	"talenthunt/internal/registration/models"
	"talenthunt/pkg/platform/sentinel"
)

type entry struct {
	pending   models.PendingSignup
	expiresAt time.Time
}

// InMemory is a mutex-guarded pending-signup store for tests and local
// development. Expiry is checked lazily on read.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]entry), now: time.Now}
}

// NewInMemoryWithClock injects a clock for expiry tests.
func NewInMemoryWithClock(now func() time.Time) *InMemory {
	return &InMemory{entries: make(map[string]entry), now: now}
}

func (s *InMemory) Create(_ context.Context, pending *models.PendingSignup, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[pending.Token] = entry{
		pending:   *pending,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *InMemory) Find(_ context.Context, token string) (*models.PendingSignup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, token)
		return nil, sentinel.ErrNotFound
	}
	clone := e.pending
	return &clone, nil
}

func (s *InMemory) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[token]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, token)
	return nil
}
