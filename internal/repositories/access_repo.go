package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stellar-p2p/backend/internal/models"
)

type AccessRepo struct {
	pool *pgxpool.Pool
}

func NewAccessRepo(pool *pgxpool.Pool) *AccessRepo {
	return &AccessRepo{pool: pool}
}

// GetByCode matches case-insensitively and returns (nil, nil) for unknown
// codes.
func (r *AccessRepo) GetByCode(ctx context.Context, code string) (*models.AccessCode, error) {
	var c models.AccessCode
	err := r.pool.QueryRow(ctx, `
		SELECT id, code, active, expires_at, max_uses, used_count, created_at
		FROM access_codes WHERE upper(code) = upper($1)
	`, code).Scan(&c.ID, &c.Code, &c.Active, &c.ExpiresAt, &c.MaxUses, &c.UsedCount, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// IncrementUsage bumps the counter only while the code is still within its
// cap, so concurrent redemptions cannot overshoot max_uses.
func (r *AccessRepo) IncrementUsage(ctx context.Context, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE access_codes SET used_count = used_count + 1
		WHERE upper(code) = upper($1)
		  AND active = true
		  AND (max_uses = 0 OR used_count < max_uses)
	`, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AccessRepo) Create(ctx context.Context, c *models.AccessCode) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO access_codes (code, active, expires_at, max_uses)
		VALUES ($1, $2, $3, $4)
		RETURNING id, used_count, created_at
	`, c.Code, c.Active, c.ExpiresAt, c.MaxUses).Scan(&c.ID, &c.UsedCount, &c.CreatedAt)
}

func (r *AccessRepo) Deactivate(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE access_codes SET active = false WHERE upper(code) = upper($1)
	`, code)
	return err
}
