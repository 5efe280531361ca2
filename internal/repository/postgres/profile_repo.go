package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/huddle/internal/domain"
)

const profileColumns = "id, email, display_name, bio, career, created_at, updated_at"

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO user_profiles (id, email, display_name, bio, career, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Email, p.DisplayName, p.Bio, p.Career, p.CreatedAt, p.UpdatedAt,
	)
	return mapError(err)
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+profileColumns+" FROM user_profiles WHERE id = $1", id)
	return scanProfile(row)
}

func (r *ProfileRepo) Update(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) (*domain.Profile, error) {
	query := `
		UPDATE user_profiles SET
			display_name = COALESCE($1, display_name),
			bio = COALESCE($2, bio),
			career = COALESCE($3, career),
			updated_at = now()
		WHERE id = $4
		RETURNING ` + profileColumns
	row := r.pool.QueryRow(ctx, query, patch.DisplayName, patch.Bio, patch.Career, id)
	return scanProfile(row)
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Bio, &p.Career, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
