package session

import (
	"context"
	"sync"
	"time"

	"talenthunt/internal/auth/models"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/sentinel"
)

// InMemorySessionStore keeps sessions in a mutex-guarded map. Used by tests
// and single-node development; production uses the redis store.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[id.SessionID]*models.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *session
	s.sessions[session.ID] = &clone
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *InMemorySessionStore) Revoke(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	sess.Revoke(time.Now())
	return nil
}
