package pending

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"talenthunt/internal/registration/models"
	"talenthunt/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	clock time.Time
	ctx   context.Context
}

func (s *InMemorySuite) SetupTest() {
	s.clock = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	s.store = NewInMemoryWithClock(func() time.Time { return s.clock })
	s.ctx = context.Background()
}

func (s *InMemorySuite) newPending(token string) *models.PendingSignup {
	return &models.PendingSignup{
		Token:     token,
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Code:      "123456",
		CreatedAt: s.clock,
	}
}

func (s *InMemorySuite) TestCreateAndFind() {
	pending := s.newPending("tok-1")
	s.Require().NoError(s.store.Create(s.ctx, pending, 10*time.Minute))

	found, err := s.store.Find(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal("jane@example.com", found.Email)
	s.Equal("123456", found.Code)

	_, err = s.store.Find(s.ctx, "no-such-token")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestExpiry verifies the record vanishes once the TTL elapses.
func (s *InMemorySuite) TestExpiry() {
	s.Require().NoError(s.store.Create(s.ctx, s.newPending("tok-1"), 10*time.Minute))

	s.Run("still live just before the deadline", func() {
		s.clock = s.clock.Add(10*time.Minute - time.Second)
		_, err := s.store.Find(s.ctx, "tok-1")
		s.Require().NoError(err)
	})

	s.Run("gone at the deadline", func() {
		s.clock = s.clock.Add(time.Second)
		_, err := s.store.Find(s.ctx, "tok-1")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemorySuite) TestDelete() {
	s.Require().NoError(s.store.Create(s.ctx, s.newPending("tok-1"), 10*time.Minute))

	s.Require().NoError(s.store.Delete(s.ctx, "tok-1"))
	_, err := s.store.Find(s.ctx, "tok-1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(s.ctx, "tok-1"), sentinel.ErrNotFound)
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}
