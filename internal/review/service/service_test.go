package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"talenthunt/internal/audit"
	identitymodels "talenthunt/internal/identity/models"
	userstore "talenthunt/internal/identity/store/user"
	"talenthunt/internal/review/models"
	reviewstore "talenthunt/internal/review/store/review"
	id "talenthunt/pkg/domain"
	dErrors "talenthunt/pkg/domain-errors"
)

const anonymousSentinel = "Anonymous"

type ServiceSuite struct {
	suite.Suite
	service  *Service
	reviews  *reviewstore.InMemory
	users    *userstore.InMemory
	recorder *audit.Capture
	ctx      context.Context

	alice *identitymodels.User
	bob   *identitymodels.User
}

func (s *ServiceSuite) SetupTest() {
	s.reviews = reviewstore.NewInMemory()
	s.users = userstore.NewInMemory()
	s.recorder = &audit.Capture{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.reviews, s.users, s.recorder, anonymousSentinel, logger, nil)
	s.ctx = context.Background()

	s.alice = s.addUser("Alice", "Smith", "alice@example.com")
	s.bob = s.addUser("Bob", "Jones", "bob@example.com")
}

func (s *ServiceSuite) addUser(first, last, email string) *identitymodels.User {
	s.T().Helper()
	u, err := identitymodels.NewUser(first, last, email, "$2a$10$hash", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.users.CreateIfEmailAvailable(s.ctx, u))
	return u
}

func (s *ServiceSuite) draft() Draft {
	return Draft{
		Ratings: models.Ratings{ProblemSolving: 4, Communication: 3, Sociability: 5},
		Texts:   models.Texts{ProblemSolving: "strong", Communication: "clear", Sociability: "kind"},
	}
}

func (s *ServiceSuite) TestCreate() {
	s.Run("success", func() {
		review, err := s.service.Create(s.ctx, s.alice.ID, s.bob.Username, s.draft())
		s.Require().NoError(err)
		s.Equal(s.alice.ID, review.ReviewerID)
		s.Equal(s.bob.ID, review.SubjectID)
		s.Equal(s.alice.Username, review.DisplayName)
		s.Contains(s.recorder.Kinds(), audit.KindReviewCreated)
	})

	s.Run("anonymous review hides the reviewer", func() {
		carol := s.addUser("Carol", "White", "carol@example.com")
		draft := s.draft()
		draft.Anonymous = true

		review, err := s.service.Create(s.ctx, s.alice.ID, carol.Username, draft)
		s.Require().NoError(err)
		s.Equal(anonymousSentinel, review.DisplayName)
		s.Equal(s.alice.ID, review.ReviewerID, "the stored reviewer stays intact")
	})

	s.Run("second review of the same subject conflicts", func() {
		_, err := s.service.Create(s.ctx, s.alice.ID, s.bob.Username, s.draft())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("self review is rejected", func() {
		_, err := s.service.Create(s.ctx, s.alice.ID, s.alice.Username, s.draft())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown subject", func() {
		_, err := s.service.Create(s.ctx, s.alice.ID, "no-such-user", s.draft())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unauthenticated actor", func() {
		_, err := s.service.Create(s.ctx, id.UserID{}, s.bob.Username, s.draft())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestEdit() {
	review, err := s.service.Create(s.ctx, s.alice.ID, s.bob.Username, s.draft())
	s.Require().NoError(err)

	s.Run("reviewer amends ratings and anonymity", func() {
		draft := s.draft()
		draft.Ratings.ProblemSolving = 1
		draft.Anonymous = true

		edited, err := s.service.Edit(s.ctx, s.alice.ID, review.ID, draft)
		s.Require().NoError(err)
		s.Equal(1, edited.Ratings.ProblemSolving)
		s.Equal(anonymousSentinel, edited.DisplayName)
		s.Contains(s.recorder.Kinds(), audit.KindReviewEdited)
	})

	s.Run("another user is forbidden even on an anonymous review", func() {
		_, err := s.service.Edit(s.ctx, s.bob.ID, review.ID, s.draft())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown review", func() {
		_, err := s.service.Edit(s.ctx, s.alice.ID, id.NewReviewID(), s.draft())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestDelete() {
	review, err := s.service.Create(s.ctx, s.alice.ID, s.bob.Username, s.draft())
	s.Require().NoError(err)

	s.Run("foreign actor is forbidden", func() {
		err := s.service.Delete(s.ctx, s.bob.ID, review.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("reviewer deletes", func() {
		s.Require().NoError(s.service.Delete(s.ctx, s.alice.ID, review.ID))
		_, err := s.service.GetByID(s.ctx, review.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(s.recorder.Kinds(), audit.KindReviewDeleted)
	})
}

// TestVoteToggle verifies toggle semantics end to end: the state returned to
// the caller matches what the store persists.
func (s *ServiceSuite) TestVoteToggle() {
	review, err := s.service.Create(s.ctx, s.alice.ID, s.bob.Username, s.draft())
	s.Require().NoError(err)
	voter := s.bob.ID

	s.Run("first up vote", func() {
		voted, state, err := s.service.Vote(s.ctx, voter, review.ID, models.DirectionUp)
		s.Require().NoError(err)
		s.Equal(models.VoteUp, state)
		s.Equal(1, voted.Score())
	})

	s.Run("repeating up retracts", func() {
		voted, state, err := s.service.Vote(s.ctx, voter, review.ID, models.DirectionUp)
		s.Require().NoError(err)
		s.Equal(models.VoteNone, state)
		s.Equal(0, voted.Score())
	})

	s.Run("down after retraction", func() {
		voted, state, err := s.service.Vote(s.ctx, voter, review.ID, models.DirectionDown)
		s.Require().NoError(err)
		s.Equal(models.VoteDown, state)
		s.Equal(-1, voted.Score())
	})

	s.Run("up flips the down vote", func() {
		voted, state, err := s.service.Vote(s.ctx, voter, review.ID, models.DirectionUp)
		s.Require().NoError(err)
		s.Equal(models.VoteUp, state)
		s.Equal(1, voted.Score())
	})

	s.Run("state survives a reload", func() {
		stored, err := s.service.GetByID(s.ctx, review.ID)
		s.Require().NoError(err)
		s.Equal(models.VoteUp, stored.VoteOf(voter))
	})

	s.Run("unauthenticated voter", func() {
		_, _, err := s.service.Vote(s.ctx, id.UserID{}, review.ID, models.DirectionUp)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestFindGivenTo() {
	s.Run("nil when no review exists", func() {
		review, err := s.service.FindGivenTo(s.ctx, s.alice.ID, s.bob.ID)
		s.Require().NoError(err)
		s.Nil(review)
	})

	s.Run("returns the pair review", func() {
		created, err := s.service.Create(s.ctx, s.alice.ID, s.bob.Username, s.draft())
		s.Require().NoError(err)

		review, err := s.service.FindGivenTo(s.ctx, s.alice.ID, s.bob.ID)
		s.Require().NoError(err)
		s.Require().NotNil(review)
		s.Equal(created.ID, review.ID)
	})
}

func (s *ServiceSuite) TestLists() {
	carol := s.addUser("Carol", "White", "carol@example.com")
	_, err := s.service.Create(s.ctx, s.alice.ID, s.bob.Username, s.draft())
	s.Require().NoError(err)
	_, err = s.service.Create(s.ctx, carol.ID, s.bob.Username, s.draft())
	s.Require().NoError(err)

	received, err := s.service.ListReceived(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Len(received, 2)

	given, err := s.service.ListGiven(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Len(given, 1)

	all, err := s.service.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
