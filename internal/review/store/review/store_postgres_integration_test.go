//go:build integration

package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	identitymodels "talenthunt/internal/identity/models"
	userstore "talenthunt/internal/identity/store/user"
	"talenthunt/internal/platform/postgres"
	"talenthunt/internal/review/models"
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

	reviewer id.UserID
	subject  id.UserID
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
	s.reviewer = s.addUser("Alice", "Smith", "alice@example.com")
	s.subject = s.addUser("Bob", "Jones", "bob@example.com")
}

func (s *PostgresIntegrationSuite) addUser(first, last, email string) id.UserID {
	s.T().Helper()
	u, err := identitymodels.NewUser(first, last, email, "$2a$10$hash", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.users.CreateIfEmailAvailable(s.ctx, u))
	return u.ID
}

func (s *PostgresIntegrationSuite) newReview(reviewerID, subjectID id.UserID) *models.Review {
	s.T().Helper()
	review, err := models.NewReview(reviewerID, subjectID,
		models.Ratings{ProblemSolving: 4, Communication: 3, Sociability: 5},
		models.Texts{ProblemSolving: "good"},
		false, "alice-smith-20260101120000", "Anonymous", time.Now().UTC())
	s.Require().NoError(err)
	return review
}

func (s *PostgresIntegrationSuite) TestPairUniqueness() {
	s.Require().NoError(s.store.CreateIfPairAvailable(s.ctx, s.newReview(s.reviewer, s.subject)))

	err := s.store.CreateIfPairAvailable(s.ctx, s.newReview(s.reviewer, s.subject))
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)

	s.Require().NoError(s.store.CreateIfPairAvailable(s.ctx, s.newReview(s.subject, s.reviewer)),
		"the reversed pair is a distinct review")
}

func (s *PostgresIntegrationSuite) TestRoundTrip() {
	created := s.newReview(s.reviewer, s.subject)
	s.Require().NoError(s.store.CreateIfPairAvailable(s.ctx, created))

	found, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.Ratings, found.Ratings)
	s.Equal(created.DisplayName, found.DisplayName)

	byPair, err := s.store.FindByPair(s.ctx, s.reviewer, s.subject)
	s.Require().NoError(err)
	s.Equal(created.ID, byPair.ID)
}

func (s *PostgresIntegrationSuite) TestUpdate() {
	review := s.newReview(s.reviewer, s.subject)
	s.Require().NoError(s.store.CreateIfPairAvailable(s.ctx, review))

	review.Ratings = models.Ratings{ProblemSolving: 1, Communication: 1, Sociability: 1}
	review.Anonymous = true
	review.DisplayName = "Anonymous"
	review.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.store.Update(s.ctx, review))

	found, err := s.store.FindByID(s.ctx, review.ID)
	s.Require().NoError(err)
	s.Equal(1, found.Ratings.ProblemSolving)
	s.True(found.Anonymous)
	s.Equal("Anonymous", found.DisplayName)
}

// TestSetVote exercises the upsert-or-delete vote write against the real
// primary key constraint.
func (s *PostgresIntegrationSuite) TestSetVote() {
	review := s.newReview(s.reviewer, s.subject)
	s.Require().NoError(s.store.CreateIfPairAvailable(s.ctx, review))
	voter := s.addUser("Carol", "White", "carol@example.com")

	s.Require().NoError(s.store.SetVote(s.ctx, review.ID, voter, models.VoteUp, time.Now().UTC()))
	found, err := s.store.FindByID(s.ctx, review.ID)
	s.Require().NoError(err)
	s.Equal(models.VoteUp, found.VoteOf(voter))

	s.Require().NoError(s.store.SetVote(s.ctx, review.ID, voter, models.VoteDown, time.Now().UTC()))
	found, err = s.store.FindByID(s.ctx, review.ID)
	s.Require().NoError(err)
	s.Equal(models.VoteDown, found.VoteOf(voter))
	s.Equal(-1, found.Score())

	s.Require().NoError(s.store.SetVote(s.ctx, review.ID, voter, models.VoteNone, time.Now().UTC()))
	found, err = s.store.FindByID(s.ctx, review.ID)
	s.Require().NoError(err)
	s.Equal(models.VoteNone, found.VoteOf(voter))
}

func (s *PostgresIntegrationSuite) TestDeleteCascadesVotes() {
	review := s.newReview(s.reviewer, s.subject)
	s.Require().NoError(s.store.CreateIfPairAvailable(s.ctx, review))
	s.Require().NoError(s.store.SetVote(s.ctx, review.ID, s.subject, models.VoteUp, time.Now().UTC()))

	s.Require().NoError(s.store.Delete(s.ctx, review.ID))

	_, err := s.store.FindByID(s.ctx, review.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	var votes int
	s.Require().NoError(s.pc.DB.QueryRowContext(s.ctx,
		`SELECT count(*) FROM review_votes`).Scan(&votes))
	s.Zero(votes)
}

func (s *PostgresIntegrationSuite) TestListOrdering() {
	base := time.Now().UTC().Add(-time.Hour)
	carol := s.addUser("Carol", "White", "carol@example.com")

	first := s.newReview(s.reviewer, s.subject)
	first.CreatedAt = base
	second := s.newReview(carol, s.subject)
	second.CreatedAt = base.Add(time.Minute)
	s.Require().NoError(s.store.CreateIfPairAvailable(s.ctx, second))
	s.Require().NoError(s.store.CreateIfPairAvailable(s.ctx, first))

	listed, err := s.store.ListReceived(s.ctx, s.subject)
	s.Require().NoError(err)
	s.Require().Len(listed, 2)
	s.Equal(first.ID, listed[0].ID)
	s.Equal(second.ID, listed[1].ID)
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}
