package merchantdata

import (
	"context"

	"github.com/google/uuid"
	"github.com/stellar-p2p/backend/internal/models"
)

// Directory is the single surface the merchant handlers talk to. Two
// implementations exist: the postgres one for production and a seeded
// in-memory fixture for local development. Lookups that miss return
// (nil, nil) so handlers can answer 404 without unwrapping driver errors.
type Directory interface {
	// Public storefront.
	ListPublicMerchants(ctx context.Context, limit, offset int) ([]models.Merchant, error)
	GetPublicMerchantBySlug(ctx context.Context, slug string) (*models.Merchant, error)
	GetBadges(ctx context.Context, merchantID uuid.UUID) ([]models.MerchantBadge, error)
	GetKpis(ctx context.Context, merchant *models.Merchant) (*models.MerchantKpis, error)
	GetVolumeSeries(ctx context.Context, merchant *models.Merchant, days int) ([]models.VolumePoint, error)
	GetSpeedHistogram(ctx context.Context, merchant *models.Merchant) ([]models.SpeedBucket, error)
	// GetActiveListings returns only listings in the active status,
	// whatever the backing store holds.
	GetActiveListings(ctx context.Context, merchantID uuid.UUID) ([]models.Listing, error)

	// Authenticated merchant console.
	GetMyMerchant(ctx context.Context, userID uuid.UUID) (*models.Merchant, error)
	UpsertMyMerchantProfile(ctx context.Context, m *models.Merchant) error
	CreateMerchantListing(ctx context.Context, l *models.Listing) error
	GetMyListings(ctx context.Context, userID uuid.UUID) ([]models.Listing, error)
}
