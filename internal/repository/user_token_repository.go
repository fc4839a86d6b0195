package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/gscribe-backend/internal/model"
)

// UserTokenRepository stores paper setters' OAuth credentials.
type UserTokenRepository struct {
	pool *pgxpool.Pool
}

// NewUserTokenRepository creates a new UserTokenRepository.
func NewUserTokenRepository(pool *pgxpool.Pool) *UserTokenRepository {
	return &UserTokenRepository{pool: pool}
}

// Get retrieves the stored credentials of a user.
func (r *UserTokenRepository) Get(ctx context.Context, userID string) (*model.UserToken, error) {
	t := &model.UserToken{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, access_token, refresh_token, updated_at
		 FROM user_tokens WHERE id = $1`, userID,
	).Scan(&t.UserID, &t.AccessToken, &t.RefreshToken, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Save inserts or replaces a user's credentials. The last writer wins.
func (r *UserTokenRepository) Save(ctx context.Context, t model.UserToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_tokens (id, access_token, refresh_token, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET access_token = EXCLUDED.access_token,
		     refresh_token = EXCLUDED.refresh_token,
		     updated_at = EXCLUDED.updated_at`,
		t.UserID, t.AccessToken, t.RefreshToken, t.UpdatedAt)
	return err
}
