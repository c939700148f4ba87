package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stellar-p2p/backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, password_hash, display_name, stellar_address,
       reputation_score, total_trades, kyc_status, notify_by_email,
       payment_methods, email_confirmed, created_at, last_active_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.StellarAddress,
		&u.ReputationScore, &u.TotalTrades, &u.KYCStatus, &u.NotifyByEmail,
		&u.PaymentMethods, &u.EmailConfirmed, &u.CreatedAt, &u.LastActiveAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, email, passwordHash string, displayName *string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns+`
	`, email, passwordHash, displayName))
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

// GetByEmail returns (nil, nil) when no account exists for the email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)
	`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, displayName *string, notifyByEmail *bool, paymentMethods []string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET
			display_name = COALESCE($1, display_name),
			notify_by_email = COALESCE($2, notify_by_email),
			payment_methods = COALESCE($3, payment_methods)
		WHERE id = $4
		RETURNING `+userColumns+`
	`, displayName, notifyByEmail, paymentMethods, id))
}

func (r *UserRepo) ConfirmEmail(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET email_confirmed = true WHERE id = $1`, id)
	return err
}

// SetStellarAddress keeps the denormalized address on users in step with the
// active wallet row.
func (r *UserRepo) SetStellarAddress(ctx context.Context, id uuid.UUID, address *string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET stellar_address = $1 WHERE id = $2`, address, id)
	return err
}

func (r *UserRepo) UpdateLastActive(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_active_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}

func (r *UserRepo) RecordCompletedTrade(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET total_trades = total_trades + 1 WHERE id = $1`, id)
	return err
}
