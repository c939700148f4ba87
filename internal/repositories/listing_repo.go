package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stellar-p2p/backend/internal/models"
)

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

const listingColumns = `id, owner_user_id, merchant_id, type, token, amount, rate::text,
       fiat_currency, payment_method, status, min_amount, max_amount, terms,
       created_at, updated_at`

func scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(&l.ID, &l.OwnerUserID, &l.MerchantID, &l.Type, &l.Token, &l.Amount, &l.Rate,
		&l.FiatCurrency, &l.PaymentMethod, &l.Status, &l.MinAmount, &l.MaxAmount, &l.Terms,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepo) Create(ctx context.Context, l *models.Listing) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO listings (owner_user_id, merchant_id, type, token, amount, rate,
		                      fiat_currency, payment_method, status, min_amount, max_amount, terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, l.OwnerUserID, l.MerchantID, l.Type, l.Token, l.Amount, l.Rate,
		l.FiatCurrency, l.PaymentMethod, l.Status, l.MinAmount, l.MaxAmount, l.Terms,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return scanListing(r.pool.QueryRow(ctx, `
		SELECT `+listingColumns+` FROM listings WHERE id = $1
	`, id))
}

type ListingFilter struct {
	OwnerUserID *uuid.UUID
	MerchantID  *uuid.UUID
	Type        *string
	Token       *string
	Status      *string
	Limit       int
	Offset      int
}

func (r *ListingRepo) List(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.OwnerUserID != nil {
		where = append(where, fmt.Sprintf("owner_user_id = $%d", argIdx))
		args = append(args, *f.OwnerUserID)
		argIdx++
	}
	if f.MerchantID != nil {
		where = append(where, fmt.Sprintf("merchant_id = $%d", argIdx))
		args = append(args, *f.MerchantID)
		argIdx++
	}
	if f.Type != nil {
		where = append(where, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *f.Type)
		argIdx++
	}
	if f.Token != nil {
		where = append(where, fmt.Sprintf("token = $%d", argIdx))
		args = append(args, *f.Token)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, nil
}

func (r *ListingRepo) Update(ctx context.Context, l *models.Listing) error {
	return r.pool.QueryRow(ctx, `
		UPDATE listings SET
			amount = $1, rate = $2, fiat_currency = $3, payment_method = $4,
			min_amount = $5, max_amount = $6, terms = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`, l.Amount, l.Rate, l.FiatCurrency, l.PaymentMethod,
		l.MinAmount, l.MaxAmount, l.Terms, l.ID,
	).Scan(&l.UpdatedAt)
}

func (r *ListingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE listings SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

// Stats aggregates active listings per token for the marketplace header.
func (r *ListingRepo) Stats(ctx context.Context) ([]models.ListingStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT token,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE type = 'buy'),
		       COUNT(*) FILTER (WHERE type = 'sell'),
		       COALESCE(MIN(rate)::text, '0'),
		       COALESCE(MAX(rate)::text, '0'),
		       COALESCE(SUM(amount), 0)
		FROM listings
		WHERE status = 'active'
		GROUP BY token
		ORDER BY token
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.ListingStats
	for rows.Next() {
		var s models.ListingStats
		if err := rows.Scan(&s.Token, &s.ActiveCount, &s.BuyCount, &s.SellCount,
			&s.MinRate, &s.MaxRate, &s.TotalVolume); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}
