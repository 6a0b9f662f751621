package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"talenthunt/internal/identity/models"
	"talenthunt/internal/identity/store"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemorySuite) newUser(first, last, email string, createdAt time.Time) *models.User {
	s.T().Helper()
	u, err := models.NewUser(first, last, email, "$2a$10$hash", createdAt)
	s.Require().NoError(err)
	return u
}

// TestEmailUniqueness verifies case-insensitive email uniqueness enforcement.
func (s *InMemorySuite) TestEmailUniqueness() {
	first := s.newUser("Jane", "Doe", "jane@example.com", time.Now())
	s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, first))

	s.Run("exact duplicate is rejected", func() {
		dup := s.newUser("Other", "Person", "jane@example.com", time.Now())
		err := s.store.CreateIfEmailAvailable(s.ctx, dup)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("case variant is rejected", func() {
		dup := s.newUser("Other", "Person", "jane@example.com", time.Now())
		dup.Email = "Jane@Example.COM"
		err := s.store.CreateIfEmailAvailable(s.ctx, dup)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("different email is accepted", func() {
		other := s.newUser("Other", "Person", "other@example.com", time.Now())
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, other))
	})
}

func (s *InMemorySuite) TestFinders() {
	u := s.newUser("Jane", "Doe", "jane@example.com", time.Now())
	s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, u))

	s.Run("by id", func() {
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u.Username, found.Username)
	})

	s.Run("by username", func() {
		found, err := s.store.FindByUsername(s.ctx, u.Username)
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("by email is case-insensitive", func() {
		found, err := s.store.FindByEmail(s.ctx, "JANE@example.com")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("missing records", func() {
		_, err := s.store.FindByID(s.ctx, id.NewUserID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByUsername(s.ctx, "nobody")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByEmail(s.ctx, "nobody@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemorySuite) TestUpdate() {
	u := s.newUser("Jane", "Doe", "jane@example.com", time.Now())
	s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, u))

	u.PasswordHash = "$2a$10$newhash"
	s.Require().NoError(s.store.Update(s.ctx, u))

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("$2a$10$newhash", found.PasswordHash)

	ghost := s.newUser("No", "One", "noone@example.com", time.Now())
	s.Require().ErrorIs(s.store.Update(s.ctx, ghost), sentinel.ErrNotFound)
}

// TestSearch exercises the keyword filter: substring matching on names,
// actor exclusion, and admin exclusion.
func (s *InMemorySuite) TestSearch() {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	jane := s.newUser("Jane", "Doe", "jane@example.com", base)
	janet := s.newUser("Janet", "Smith", "janet@example.com", base.Add(time.Minute))
	admin := s.newUser("Jane", "Admin", "admin@example.com", base)
	admin.Admin = true
	for _, u := range []*models.User{jane, janet, admin} {
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, u))
	}

	s.Run("either matches first or last name", func() {
		out, err := s.store.Search(s.ctx, store.SearchFilter{Either: "jan"})
		s.Require().NoError(err)
		s.Len(out, 2)
	})

	s.Run("first and last must both match", func() {
		out, err := s.store.Search(s.ctx, store.SearchFilter{First: "jane", Last: "doe"})
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Equal(jane.ID, out[0].ID)
	})

	s.Run("the acting user is excluded", func() {
		out, err := s.store.Search(s.ctx, store.SearchFilter{Either: "jan", ExcludeUserID: jane.ID})
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Equal(janet.ID, out[0].ID)
	})

	s.Run("admins never appear", func() {
		out, err := s.store.Search(s.ctx, store.SearchFilter{Either: "admin"})
		s.Require().NoError(err)
		s.Empty(out)
	})

	s.Run("results come back oldest first", func() {
		out, err := s.store.Search(s.ctx, store.SearchFilter{Either: "jan"})
		s.Require().NoError(err)
		s.Require().Len(out, 2)
		s.Equal(jane.ID, out[0].ID)
		s.Equal(janet.ID, out[1].ID)
	})
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}
