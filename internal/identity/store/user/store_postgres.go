package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"talenthunt/internal/identity/models"
	"talenthunt/internal/identity/store"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists users in PostgreSQL. This store is pure I/O; domain
// rules (username derivation, search token splitting) belong in the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, is_admin, created_at`

func (s *PostgresStore) CreateIfEmailAvailable(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Admin,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, password_hash = $4
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.FirstName,
		user.LastName,
		user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, filter store.SearchFilter) ([]*models.User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if filter.Either != "" {
		query := `
			SELECT ` + userColumns + `
			FROM users
			WHERE (first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%')
			  AND id <> $2
			  AND NOT is_admin
			ORDER BY created_at, username
		`
		rows, err = s.db.QueryContext(ctx, query, escapeLike(filter.Either), uuid.UUID(filter.ExcludeUserID))
	} else {
		query := `
			SELECT ` + userColumns + `
			FROM users
			WHERE first_name ILIKE '%' || $1 || '%'
			  AND last_name ILIKE '%' || $2 || '%'
			  AND id <> $3
			  AND NOT is_admin
			ORDER BY created_at, username
		`
		rows, err = s.db.QueryContext(ctx, query, escapeLike(filter.First), escapeLike(filter.Last), uuid.UUID(filter.ExcludeUserID))
	}
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search users rows: %w", err)
	}
	return users, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes ILIKE metacharacters so search tokens match
// literally.
func escapeLike(token string) string {
	return likeEscaper.Replace(token)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (*models.User, error) {
	u, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUserRow(row rowScanner) (*models.User, error) {
	var (
		u      models.User
		userID uuid.UUID
	)
	err := row.Scan(
		&userID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&u.Admin,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(userID)
	return &u, nil
}
