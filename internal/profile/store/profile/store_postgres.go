package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"talenthunt/internal/profile/models"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/sentinel"
	"talenthunt/pkg/requestcontext"
)

const uniqueViolation = "23505"

// PostgresStore persists profiles in PostgreSQL. Contact-number uniqueness is
// enforced by a partial unique index; the empty string means "not set" and is
// exempt.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `user_id, contact_number, gender, bio, photo_ref, updated_at`

// GetOrCreate relies on ON CONFLICT DO NOTHING so concurrent first reads of
// the same profile cannot create duplicates.
func (s *PostgresStore) GetOrCreate(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	insert := `
		INSERT INTO profiles (user_id, gender, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, insert,
		uuid.UUID(userID),
		models.GenderUnspecified,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return s.FindByUserID(ctx, userID)
}

func (s *PostgresStore) FindByUserID(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return scanProfile(s.db.QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *PostgresStore) FindByContactNumber(ctx context.Context, contact string) (*models.Profile, error) {
	if contact == "" {
		return nil, sentinel.ErrNotFound
	}
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE contact_number = $1`
	return scanProfile(s.db.QueryRowContext(ctx, query, contact))
}

func (s *PostgresStore) Save(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET contact_number = $2, gender = $3, bio = $4, photo_ref = $5, updated_at = $6
		WHERE user_id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(profile.UserID),
		profile.ContactNumber,
		profile.Gender,
		profile.Bio,
		profile.PhotoRef,
		profile.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("save profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save profile rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var (
		p      models.Profile
		userID uuid.UUID
	)
	err := row.Scan(
		&userID,
		&p.ContactNumber,
		&p.Gender,
		&p.Bio,
		&p.PhotoRef,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	p.UserID = id.UserID(userID)
	return &p, nil
}
