//go:build integration

package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	identitymodels "talenthunt/internal/identity/models"
	userstore "talenthunt/internal/identity/store/user"
	"talenthunt/internal/platform/postgres"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/sentinel"
	"talenthunt/pkg/testutil/containers"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	store *PostgresStore
	users *userstore.PostgresStore
	pc    *containers.PostgresContainer
	ctx   context.Context
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pc = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(s.ctx, s.pc.DB))
	s.store = NewPostgres(s.pc.DB)
	s.users = userstore.NewPostgres(s.pc.DB)
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, err := s.pc.DB.ExecContext(s.ctx, `TRUNCATE users CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresIntegrationSuite) addUser(email string) id.UserID {
	s.T().Helper()
	u, err := identitymodels.NewUser("Jane", "Doe", email, "$2a$10$hash", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.users.CreateIfEmailAvailable(s.ctx, u))
	return u.ID
}

func (s *PostgresIntegrationSuite) TestGetOrCreate() {
	userID := s.addUser("jane@example.com")

	created, err := s.store.GetOrCreate(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(userID, created.UserID)

	s.Require().NoError(created.SetBio("hello"))
	s.Require().NoError(s.store.Save(s.ctx, created))

	again, err := s.store.GetOrCreate(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal("hello", again.Bio, "the second call returns the existing row")
}

// TestContactUniqueness exercises the partial unique index: set numbers are
// globally unique, empty numbers never conflict.
func (s *PostgresIntegrationSuite) TestContactUniqueness() {
	first, err := s.store.GetOrCreate(s.ctx, s.addUser("a@example.com"))
	s.Require().NoError(err)
	s.Require().NoError(first.SetContactNumber("9876543210"))
	first.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.store.Save(s.ctx, first))

	second, err := s.store.GetOrCreate(s.ctx, s.addUser("b@example.com"))
	s.Require().NoError(err)
	s.Require().NoError(second.SetContactNumber("9876543210"))
	second.UpdatedAt = time.Now().UTC()
	s.Require().ErrorIs(s.store.Save(s.ctx, second), sentinel.ErrAlreadyUsed)

	s.Run("empty numbers never conflict", func() {
		a, err := s.store.GetOrCreate(s.ctx, s.addUser("c@example.com"))
		s.Require().NoError(err)
		b, err := s.store.GetOrCreate(s.ctx, s.addUser("d@example.com"))
		s.Require().NoError(err)
		a.UpdatedAt, b.UpdatedAt = time.Now().UTC(), time.Now().UTC()
		s.Require().NoError(s.store.Save(s.ctx, a))
		s.Require().NoError(s.store.Save(s.ctx, b))
	})

	s.Run("the owner may re-save their own number", func() {
		first.Bio = "updated"
		first.UpdatedAt = time.Now().UTC()
		s.Require().NoError(s.store.Save(s.ctx, first))
	})
}

func (s *PostgresIntegrationSuite) TestFindByContactNumber() {
	profile, err := s.store.GetOrCreate(s.ctx, s.addUser("jane@example.com"))
	s.Require().NoError(err)
	s.Require().NoError(profile.SetContactNumber("9876543210"))
	profile.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.store.Save(s.ctx, profile))

	found, err := s.store.FindByContactNumber(s.ctx, "9876543210")
	s.Require().NoError(err)
	s.Equal(profile.UserID, found.UserID)

	_, err = s.store.FindByContactNumber(s.ctx, "0000000000")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}
