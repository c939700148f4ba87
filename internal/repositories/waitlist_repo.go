package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stellar-p2p/backend/internal/models"
)

type WaitlistRepo struct {
	pool *pgxpool.Pool
}

func NewWaitlistRepo(pool *pgxpool.Pool) *WaitlistRepo {
	return &WaitlistRepo{pool: pool}
}

const waitlistColumns = `id, name, email, company, role, country, source, use_case, notes,
       otp, otp_expires_at, verified_at, created_at, updated_at`

func scanWaitlist(row pgx.Row) (*models.WaitlistSubmission, error) {
	var s models.WaitlistSubmission
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Company, &s.Role, &s.Country, &s.Source,
		&s.UseCase, &s.Notes, &s.OTP, &s.OTPExpiresAt, &s.VerifiedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert keeps one row per email. Re-submitting refreshes the profile fields
// and the pending OTP; a row that already verified keeps its verified_at.
func (r *WaitlistRepo) Upsert(ctx context.Context, s *models.WaitlistSubmission, otp string, otpExpiresAt time.Time) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO waitlist_submissions (name, email, company, role, country, source, use_case, notes, otp, otp_expires_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			company = COALESCE(EXCLUDED.company, waitlist_submissions.company),
			role = COALESCE(EXCLUDED.role, waitlist_submissions.role),
			country = COALESCE(EXCLUDED.country, waitlist_submissions.country),
			source = COALESCE(EXCLUDED.source, waitlist_submissions.source),
			use_case = COALESCE(EXCLUDED.use_case, waitlist_submissions.use_case),
			notes = COALESCE(EXCLUDED.notes, waitlist_submissions.notes),
			otp = EXCLUDED.otp,
			otp_expires_at = EXCLUDED.otp_expires_at,
			updated_at = now()
		RETURNING id, verified_at, created_at, updated_at
	`, s.Name, s.Email, s.Company, s.Role, s.Country, s.Source, s.UseCase, s.Notes, otp, otpExpiresAt,
	).Scan(&s.ID, &s.VerifiedAt, &s.CreatedAt, &s.UpdatedAt)
}

func (r *WaitlistRepo) GetByEmail(ctx context.Context, email string) (*models.WaitlistSubmission, error) {
	s, err := scanWaitlist(r.pool.QueryRow(ctx, `
		SELECT `+waitlistColumns+` FROM waitlist_submissions WHERE email = lower($1)
	`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// RefreshOTP re-issues a code for an email already on the list. Returns false
// when the email is unknown or already verified.
func (r *WaitlistRepo) RefreshOTP(ctx context.Context, email, otp string, otpExpiresAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE waitlist_submissions
		SET otp = $2, otp_expires_at = $3, updated_at = now()
		WHERE email = lower($1) AND verified_at IS NULL
	`, email, otp, otpExpiresAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkVerified nulls the OTP in the same statement that checks it, so a code
// verifies at most once.
func (r *WaitlistRepo) MarkVerified(ctx context.Context, email, otp string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE waitlist_submissions
		SET verified_at = now(), otp = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE email = lower($1) AND otp = $2 AND otp_expires_at > now() AND verified_at IS NULL
	`, email, otp)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClearExpiredOTPs nulls codes past their window. Run by the worker sweep.
func (r *WaitlistRepo) ClearExpiredOTPs(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE waitlist_submissions
		SET otp = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE otp IS NOT NULL AND otp_expires_at < now()
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
