package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talenthunt/internal/review/models"
	id "talenthunt/pkg/domain"
)

func anonymousReview(t *testing.T, reviewerID id.UserID) *models.Review {
	t.Helper()
	review, err := models.NewReview(reviewerID, id.NewUserID(),
		models.Ratings{ProblemSolving: 3}, models.Texts{}, true, "real-user", "Anonymous", time.Now())
	require.NoError(t, err)
	return review
}

func TestCanEdit(t *testing.T) {
	reviewer := id.NewUserID()
	review := anonymousReview(t, reviewer)

	assert.True(t, CanEdit(reviewer, review))
	assert.False(t, CanEdit(id.NewUserID(), review), "a different user may not edit")
	assert.False(t, CanEdit(id.UserID{}, review), "anonymous callers may not edit")
}

func TestCanDelete(t *testing.T) {
	reviewer := id.NewUserID()
	review := anonymousReview(t, reviewer)

	// Authorization uses the stored reviewer even when the review is
	// displayed anonymously.
	assert.True(t, CanDelete(reviewer, review))
	assert.False(t, CanDelete(id.NewUserID(), review))
}

func TestCanVote(t *testing.T) {
	review := anonymousReview(t, id.NewUserID())

	assert.True(t, CanVote(id.NewUserID(), review))
	assert.True(t, CanVote(review.ReviewerID, review), "even the reviewer may vote")
	assert.False(t, CanVote(id.UserID{}, review))
}

func TestCanCreate(t *testing.T) {
	actor := id.NewUserID()
	subject := id.NewUserID()

	assert.True(t, CanCreate(actor, subject, nil))
	assert.False(t, CanCreate(actor, actor, nil), "no self review")
	assert.False(t, CanCreate(actor, subject, anonymousReview(t, actor)), "existing pair routes to edit")
	assert.False(t, CanCreate(id.UserID{}, subject, nil))
}
