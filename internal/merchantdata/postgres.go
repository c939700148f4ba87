package merchantdata

import (
	"context"

	"github.com/google/uuid"
	"github.com/stellar-p2p/backend/internal/models"
	"github.com/stellar-p2p/backend/internal/repositories"
)

// PostgresDirectory backs the merchant surface with the relational store.
// KPI queries run against the escrow mirror keyed by the merchant's wallet
// address; a merchant with no linked wallet gets zeroed figures.
type PostgresDirectory struct {
	merchants *repositories.MerchantRepo
	listings  *repositories.ListingRepo
	users     *repositories.UserRepo
}

func NewPostgresDirectory(merchants *repositories.MerchantRepo, listings *repositories.ListingRepo, users *repositories.UserRepo) *PostgresDirectory {
	return &PostgresDirectory{merchants: merchants, listings: listings, users: users}
}

func (d *PostgresDirectory) ListPublicMerchants(ctx context.Context, limit, offset int) ([]models.Merchant, error) {
	return d.merchants.ListPublic(ctx, limit, offset)
}

func (d *PostgresDirectory) GetPublicMerchantBySlug(ctx context.Context, slug string) (*models.Merchant, error) {
	return d.merchants.GetPublicBySlug(ctx, slug)
}

func (d *PostgresDirectory) GetBadges(ctx context.Context, merchantID uuid.UUID) ([]models.MerchantBadge, error) {
	return d.merchants.GetBadges(ctx, merchantID)
}

func (d *PostgresDirectory) GetKpis(ctx context.Context, merchant *models.Merchant) (*models.MerchantKpis, error) {
	address, err := d.walletAddress(ctx, merchant.UserID)
	if err != nil {
		return nil, err
	}
	if address == "" {
		return &models.MerchantKpis{MerchantID: merchant.ID}, nil
	}
	return d.merchants.GetKpis(ctx, merchant.ID, address)
}

func (d *PostgresDirectory) GetVolumeSeries(ctx context.Context, merchant *models.Merchant, days int) ([]models.VolumePoint, error) {
	address, err := d.walletAddress(ctx, merchant.UserID)
	if err != nil {
		return nil, err
	}
	if address == "" {
		return nil, nil
	}
	return d.merchants.GetVolumeSeries(ctx, address, days)
}

func (d *PostgresDirectory) GetSpeedHistogram(ctx context.Context, merchant *models.Merchant) ([]models.SpeedBucket, error) {
	address, err := d.walletAddress(ctx, merchant.UserID)
	if err != nil {
		return nil, err
	}
	if address == "" {
		return nil, nil
	}
	return d.merchants.GetSpeedHistogram(ctx, address)
}

func (d *PostgresDirectory) GetActiveListings(ctx context.Context, merchantID uuid.UUID) ([]models.Listing, error) {
	status := models.ListingStatusActive
	return d.listings.List(ctx, repositories.ListingFilter{
		MerchantID: &merchantID,
		Status:     &status,
		Limit:      100,
	})
}

func (d *PostgresDirectory) GetMyMerchant(ctx context.Context, userID uuid.UUID) (*models.Merchant, error) {
	return d.merchants.GetByUserID(ctx, userID)
}

func (d *PostgresDirectory) UpsertMyMerchantProfile(ctx context.Context, m *models.Merchant) error {
	return d.merchants.Upsert(ctx, m)
}

func (d *PostgresDirectory) CreateMerchantListing(ctx context.Context, l *models.Listing) error {
	return d.listings.Create(ctx, l)
}

func (d *PostgresDirectory) GetMyListings(ctx context.Context, userID uuid.UUID) ([]models.Listing, error) {
	return d.listings.List(ctx, repositories.ListingFilter{
		OwnerUserID: &userID,
		Limit:       100,
	})
}

func (d *PostgresDirectory) walletAddress(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.StellarAddress == nil {
		return "", nil
	}
	return *u.StellarAddress, nil
}
