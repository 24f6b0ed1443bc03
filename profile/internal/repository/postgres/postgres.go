package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/profile/internal/domain"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/profile/internal/repository"
)

const uniqueViolation = "23505"

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ repository.ProfileRepository = (*Repository)(nil)

// CreateProfile inserts a profile and fills in generated fields.
func (r *Repository) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	const query = `INSERT INTO user_profiles (auth_user_id, full_name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	row := r.pool.QueryRow(ctx, query, profile.AuthUserID, profile.FullName)
	if err := row.Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetProfileByAuthUser fetches the profile of one auth user.
func (r *Repository) GetProfileByAuthUser(ctx context.Context, authUserID int64) (*domain.Profile, error) {
	const query = `SELECT id, auth_user_id, full_name, created_at, updated_at
		FROM user_profiles WHERE auth_user_id = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, authUserID))
}

// UpdateProfileName renames the profile of one auth user.
func (r *Repository) UpdateProfileName(ctx context.Context, authUserID int64, fullName string) (*domain.Profile, error) {
	const query = `UPDATE user_profiles SET full_name = $2, updated_at = NOW()
		WHERE auth_user_id = $1
		RETURNING id, auth_user_id, full_name, created_at, updated_at`
	return scanProfile(r.pool.QueryRow(ctx, query, authUserID, fullName))
}

// DeleteProfileByAuthUser removes the profile of one auth user.
func (r *Repository) DeleteProfileByAuthUser(ctx context.Context, authUserID int64) error {
	const query = `DELETE FROM user_profiles WHERE auth_user_id = $1`
	tag, err := r.pool.Exec(ctx, query, authUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.AuthUserID, &p.FullName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
