package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stellar-p2p/backend/internal/models"
)

type MerchantRepo struct {
	pool *pgxpool.Pool
}

func NewMerchantRepo(pool *pgxpool.Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

const merchantColumns = `id, user_id, slug, display_name, bio, country_code, avatar_url,
       verification_status, is_public, created_at, updated_at`

func scanMerchant(row pgx.Row) (*models.Merchant, error) {
	var m models.Merchant
	err := row.Scan(&m.ID, &m.UserID, &m.Slug, &m.DisplayName, &m.Bio, &m.CountryCode, &m.AvatarURL,
		&m.VerificationStatus, &m.IsPublic, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetPublicBySlug returns (nil, nil) when the slug does not resolve to a
// public merchant, so the caller can render a 404 instead of a 500.
func (r *MerchantRepo) GetPublicBySlug(ctx context.Context, slug string) (*models.Merchant, error) {
	m, err := scanMerchant(r.pool.QueryRow(ctx, `
		SELECT `+merchantColumns+` FROM merchants
		WHERE slug = $1 AND is_public = true
	`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *MerchantRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Merchant, error) {
	m, err := scanMerchant(r.pool.QueryRow(ctx, `
		SELECT `+merchantColumns+` FROM merchants WHERE user_id = $1
	`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *MerchantRepo) ListPublic(ctx context.Context, limit, offset int) ([]models.Merchant, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+merchantColumns+` FROM merchants
		WHERE is_public = true
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var merchants []models.Merchant
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, err
		}
		merchants = append(merchants, *m)
	}
	return merchants, nil
}

// Upsert creates or updates the caller's merchant profile keyed by user_id.
// Slug conflicts surface as a unique violation for the service to translate.
func (r *MerchantRepo) Upsert(ctx context.Context, m *models.Merchant) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO merchants (user_id, slug, display_name, bio, country_code, avatar_url, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			slug = EXCLUDED.slug,
			display_name = EXCLUDED.display_name,
			bio = COALESCE(EXCLUDED.bio, merchants.bio),
			country_code = COALESCE(EXCLUDED.country_code, merchants.country_code),
			avatar_url = COALESCE(EXCLUDED.avatar_url, merchants.avatar_url),
			is_public = EXCLUDED.is_public,
			updated_at = now()
		RETURNING id, verification_status, created_at, updated_at
	`, m.UserID, m.Slug, m.DisplayName, m.Bio, m.CountryCode, m.AvatarURL, m.IsPublic,
	).Scan(&m.ID, &m.VerificationStatus, &m.CreatedAt, &m.UpdatedAt)
}

func (r *MerchantRepo) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE merchants SET verification_status = $1, updated_at = now() WHERE id = $2
	`, status, id)
	return err
}

// --- Badges ---

func (r *MerchantRepo) GetBadges(ctx context.Context, merchantID uuid.UUID) ([]models.MerchantBadge, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT code, kind, label, awarded_at
		FROM merchant_badges WHERE merchant_id = $1
		ORDER BY awarded_at DESC
	`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []models.MerchantBadge
	for rows.Next() {
		var b models.MerchantBadge
		if err := rows.Scan(&b.Code, &b.Kind, &b.Label, &b.AwardedAt); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, nil
}

func (r *MerchantRepo) AwardBadge(ctx context.Context, merchantID uuid.UUID, b models.MerchantBadge) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO merchant_badges (merchant_id, code, kind, label)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (merchant_id, code) DO NOTHING
	`, merchantID, b.Code, b.Kind, b.Label)
	return err
}

// --- KPIs ---

// GetKpis computes trading KPIs from the escrow mirror over the last 30 days.
// A merchant appears on either side of an escrow through their wallet address.
func (r *MerchantRepo) GetKpis(ctx context.Context, merchantID uuid.UUID, address string) (*models.MerchantKpis, error) {
	k := &models.MerchantKpis{MerchantID: merchantID}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(100.0 * COUNT(*) FILTER (WHERE released) / NULLIF(COUNT(*), 0), 0),
			COALESCE(100.0 * COUNT(*) FILTER (WHERE disputed) / NULLIF(COUNT(*), 0), 0),
			COALESCE(SUM(amount) FILTER (WHERE released), 0),
			COALESCE(percentile_cont(0.5) WITHIN GROUP (
				ORDER BY EXTRACT(EPOCH FROM updated_at - created_at) / 60.0
			) FILTER (WHERE released), 0)
		FROM escrows
		WHERE (approver_address = $1 OR service_provider_address = $1)
		  AND created_at > now() - interval '30 days'
	`, address).Scan(&k.TradeCount30d, &k.CompletionRatePct, &k.DisputeRatePct,
		&k.Volume30d, &k.MedianReleaseMinutes)
	if err != nil {
		return nil, err
	}
	return k, nil
}

// GetVolumeSeries returns daily released volume for the last N days, gaps
// filled with zero rows.
func (r *MerchantRepo) GetVolumeSeries(ctx context.Context, address string, days int) ([]models.VolumePoint, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT d::date, COALESCE(SUM(e.amount), 0)
		FROM generate_series(now()::date - interval '%d days', now()::date, interval '1 day') d
		LEFT JOIN escrows e
			ON e.updated_at::date = d::date
			AND e.released
			AND (e.approver_address = $1 OR e.service_provider_address = $1)
		GROUP BY d::date
		ORDER BY d::date
	`, days-1), address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.VolumePoint
	for rows.Next() {
		var p models.VolumePoint
		if err := rows.Scan(&p.Day, &p.Volume); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// GetSpeedHistogram bins the minutes between funding and release.
func (r *MerchantRepo) GetSpeedHistogram(ctx context.Context, address string) ([]models.SpeedBucket, error) {
	rows, err := r.pool.Query(ctx, `
		WITH speeds AS (
			SELECT EXTRACT(EPOCH FROM updated_at - created_at) / 60.0 AS minutes
			FROM escrows
			WHERE released
			  AND (approver_address = $1 OR service_provider_address = $1)
		)
		SELECT b.bucket, COUNT(s.minutes)
		FROM (VALUES
			('<5m', 0, 5), ('5-15m', 5, 15), ('15-60m', 15, 60), ('>60m', 60, NULL)
		) AS b(bucket, lo, hi)
		LEFT JOIN speeds s ON s.minutes >= b.lo AND (b.hi IS NULL OR s.minutes < b.hi)
		GROUP BY b.bucket, b.lo
		ORDER BY b.lo
	`, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []models.SpeedBucket
	for rows.Next() {
		var b models.SpeedBucket
		if err := rows.Scan(&b.Bucket, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}
