package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"talenthunt/internal/review/models"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists reviews in PostgreSQL. Pair uniqueness rides on the
// (reviewer_id, subject_id) unique constraint; votes live in review_votes and
// are loaded alongside every read.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const reviewColumns = `id, reviewer_id, subject_id,
	rating_problem_solving, rating_communication, rating_sociability,
	problem_solving, communication, sociability,
	anonymous, display_name, created_at, updated_at`

func (s *PostgresStore) CreateIfPairAvailable(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (id, reviewer_id, subject_id,
			rating_problem_solving, rating_communication, rating_sociability,
			problem_solving, communication, sociability,
			anonymous, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(review.ID),
		uuid.UUID(review.ReviewerID),
		uuid.UUID(review.SubjectID),
		review.Ratings.ProblemSolving,
		review.Ratings.Communication,
		review.Ratings.Sociability,
		review.Texts.ProblemSolving,
		review.Texts.Communication,
		review.Texts.Sociability,
		review.Anonymous,
		review.DisplayName,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, reviewID id.ReviewID) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	review, err := scanReview(s.db.QueryRowContext(ctx, query, uuid.UUID(reviewID)))
	if err != nil {
		return nil, err
	}
	if err := s.loadVotes(ctx, map[id.ReviewID]*models.Review{review.ID: review}); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *PostgresStore) FindByPair(ctx context.Context, reviewerID, subjectID id.UserID) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE reviewer_id = $1 AND subject_id = $2`
	review, err := scanReview(s.db.QueryRowContext(ctx, query, uuid.UUID(reviewerID), uuid.UUID(subjectID)))
	if err != nil {
		return nil, err
	}
	if err := s.loadVotes(ctx, map[id.ReviewID]*models.Review{review.ID: review}); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *PostgresStore) Update(ctx context.Context, review *models.Review) error {
	query := `
		UPDATE reviews
		SET rating_problem_solving = $2, rating_communication = $3, rating_sociability = $4,
		    problem_solving = $5, communication = $6, sociability = $7,
		    anonymous = $8, display_name = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(review.ID),
		review.Ratings.ProblemSolving,
		review.Ratings.Communication,
		review.Ratings.Sociability,
		review.Texts.ProblemSolving,
		review.Texts.Communication,
		review.Texts.Sociability,
		review.Anonymous,
		review.DisplayName,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, reviewID id.ReviewID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, uuid.UUID(reviewID))
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetVote(ctx context.Context, reviewID id.ReviewID, voterID id.UserID, state models.VoteState, castAt time.Time) error {
	if state == models.VoteNone {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM review_votes WHERE review_id = $1 AND voter_id = $2`,
			uuid.UUID(reviewID), uuid.UUID(voterID))
		if err != nil {
			return fmt.Errorf("retract vote: %w", err)
		}
		return nil
	}

	direction := int(models.DirectionUp)
	if state == models.VoteDown {
		direction = int(models.DirectionDown)
	}
	query := `
		INSERT INTO review_votes (review_id, voter_id, direction, cast_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (review_id, voter_id) DO UPDATE
		SET direction = EXCLUDED.direction, cast_at = EXCLUDED.cast_at
	`
	_, err := s.db.ExecContext(ctx, query, uuid.UUID(reviewID), uuid.UUID(voterID), direction, castAt)
	if err != nil {
		return fmt.Errorf("set vote: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListReceived(ctx context.Context, subjectID id.UserID) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE subject_id = $1 ORDER BY created_at, id`
	return s.queryReviews(ctx, query, uuid.UUID(subjectID))
}

func (s *PostgresStore) ListGiven(ctx context.Context, reviewerID id.UserID) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE reviewer_id = $1 ORDER BY created_at, id`
	return s.queryReviews(ctx, query, uuid.UUID(reviewerID))
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews ORDER BY created_at, id`
	return s.queryReviews(ctx, query)
}

func (s *PostgresStore) queryReviews(ctx context.Context, query string, args ...any) ([]*models.Review, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	byID := make(map[id.ReviewID]*models.Review)
	for rows.Next() {
		r, err := scanReviewRow(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
		byID[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews rows: %w", err)
	}

	if err := s.loadVotes(ctx, byID); err != nil {
		return nil, err
	}
	return reviews, nil
}

// loadVotes populates the vote sets for the given reviews in one query.
func (s *PostgresStore) loadVotes(ctx context.Context, reviews map[id.ReviewID]*models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(reviews))
	for reviewID := range reviews {
		ids = append(ids, uuid.UUID(reviewID))
	}

	query := `SELECT review_id, voter_id, direction FROM review_votes WHERE review_id = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reviewID  uuid.UUID
			voterID   uuid.UUID
			direction int
		)
		if err := rows.Scan(&reviewID, &voterID, &direction); err != nil {
			return fmt.Errorf("scan vote: %w", err)
		}
		r, ok := reviews[id.ReviewID(reviewID)]
		if !ok {
			continue
		}
		if direction == int(models.DirectionUp) {
			r.Upvoters[id.UserID(voterID)] = struct{}{}
		} else {
			r.Downvoters[id.UserID(voterID)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load votes rows: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row *sql.Row) (*models.Review, error) {
	r, err := scanReviewRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func scanReviewRow(row rowScanner) (*models.Review, error) {
	var (
		r          models.Review
		reviewID   uuid.UUID
		reviewerID uuid.UUID
		subjectID  uuid.UUID
	)
	err := row.Scan(
		&reviewID,
		&reviewerID,
		&subjectID,
		&r.Ratings.ProblemSolving,
		&r.Ratings.Communication,
		&r.Ratings.Sociability,
		&r.Texts.ProblemSolving,
		&r.Texts.Communication,
		&r.Texts.Sociability,
		&r.Anonymous,
		&r.DisplayName,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	r.ID = id.ReviewID(reviewID)
	r.ReviewerID = id.UserID(reviewerID)
	r.SubjectID = id.UserID(subjectID)
	r.Upvoters = make(map[id.UserID]struct{})
	r.Downvoters = make(map[id.UserID]struct{})
	return &r, nil
}
