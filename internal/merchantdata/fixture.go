package merchantdata

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stellar-p2p/backend/internal/models"
)

// FixtureDirectory serves seeded in-memory data for local development and
// mock mode. Writes mutate the in-memory state so the console flows stay
// usable without postgres.
type FixtureDirectory struct {
	mu        sync.RWMutex
	merchants []models.Merchant
	listings  []models.Listing
	badges    map[uuid.UUID][]models.MerchantBadge
	kpis      map[uuid.UUID]models.MerchantKpis
}

func NewFixtureDirectory() *FixtureDirectory {
	d := &FixtureDirectory{
		badges: map[uuid.UUID][]models.MerchantBadge{},
		kpis:   map[uuid.UUID]models.MerchantKpis{},
	}
	d.seed()
	return d
}

func strPtr(s string) *string { return &s }

func (d *FixtureDirectory) seed() {
	now := time.Now()
	aurora := models.Merchant{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		Slug:               "aurora-exchange",
		DisplayName:        "Aurora Exchange",
		Bio:                strPtr("High volume USDC desk, online 16h a day."),
		CountryCode:        strPtr("NG"),
		VerificationStatus: models.MerchantStatusVerified,
		IsPublic:           true,
		CreatedAt:          now.AddDate(0, -8, 0),
		UpdatedAt:          now,
	}
	cedar := models.Merchant{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		Slug:               "cedar-otc",
		DisplayName:        "Cedar OTC",
		Bio:                strPtr("EURC specialist, SEPA instant only."),
		CountryCode:        strPtr("DE"),
		VerificationStatus: models.MerchantStatusPending,
		IsPublic:           true,
		CreatedAt:          now.AddDate(0, -2, 0),
		UpdatedAt:          now,
	}
	d.merchants = []models.Merchant{aurora, cedar}

	d.badges[aurora.ID] = []models.MerchantBadge{
		{Code: "verified-merchant", Kind: models.BadgeKindSBT, Label: "Verified Merchant", AwardedAt: now.AddDate(0, -7, 0)},
		{Code: "fast-release", Kind: models.BadgeKindProgrammatic, Label: "Fast Release", AwardedAt: now.AddDate(0, -1, 0)},
	}
	d.kpis[aurora.ID] = models.MerchantKpis{
		MerchantID:           aurora.ID,
		CompletionRatePct:    98.4,
		DisputeRatePct:       0.6,
		Volume30d:            125_000_0000000,
		MedianReleaseMinutes: 7.5,
		TradeCount30d:        212,
	}
	d.kpis[cedar.ID] = models.MerchantKpis{
		MerchantID:           cedar.ID,
		CompletionRatePct:    94.0,
		DisputeRatePct:       2.1,
		Volume30d:            18_400_0000000,
		MedianReleaseMinutes: 22.0,
		TradeCount30d:        41,
	}

	d.listings = []models.Listing{
		{
			ID: uuid.New(), OwnerUserID: aurora.UserID, MerchantID: &aurora.ID,
			Type: models.ListingTypeSell, Token: "USDC", Amount: 5_000_0000000,
			Rate: "1580.50", FiatCurrency: "NGN", PaymentMethod: "bank_transfer",
			Status: models.ListingStatusActive, CreatedAt: now.AddDate(0, 0, -3), UpdatedAt: now,
		},
		{
			ID: uuid.New(), OwnerUserID: aurora.UserID, MerchantID: &aurora.ID,
			Type: models.ListingTypeBuy, Token: "USDC", Amount: 2_000_0000000,
			Rate: "1575.00", FiatCurrency: "NGN", PaymentMethod: "bank_transfer",
			Status: models.ListingStatusPaused, CreatedAt: now.AddDate(0, 0, -10), UpdatedAt: now,
		},
		{
			ID: uuid.New(), OwnerUserID: aurora.UserID, MerchantID: &aurora.ID,
			Type: models.ListingTypeSell, Token: "EURC", Amount: 1_000_0000000,
			Rate: "0.99", FiatCurrency: "EUR", PaymentMethod: "sepa_instant",
			Status: models.ListingStatusCompleted, CreatedAt: now.AddDate(0, -1, 0), UpdatedAt: now,
		},
		{
			ID: uuid.New(), OwnerUserID: cedar.UserID, MerchantID: &cedar.ID,
			Type: models.ListingTypeSell, Token: "EURC", Amount: 10_000_0000000,
			Rate: "1.01", FiatCurrency: "EUR", PaymentMethod: "sepa_instant",
			Status: models.ListingStatusActive, CreatedAt: now.AddDate(0, 0, -1), UpdatedAt: now,
		},
	}
}

func (d *FixtureDirectory) ListPublicMerchants(_ context.Context, limit, offset int) ([]models.Merchant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []models.Merchant
	for _, m := range d.merchants {
		if m.IsPublic {
			out = append(out, m)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *FixtureDirectory) GetPublicMerchantBySlug(_ context.Context, slug string) (*models.Merchant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for i := range d.merchants {
		if d.merchants[i].Slug == slug && d.merchants[i].IsPublic {
			m := d.merchants[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (d *FixtureDirectory) GetBadges(_ context.Context, merchantID uuid.UUID) ([]models.MerchantBadge, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.badges[merchantID], nil
}

func (d *FixtureDirectory) GetKpis(_ context.Context, merchant *models.Merchant) (*models.MerchantKpis, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if k, ok := d.kpis[merchant.ID]; ok {
		return &k, nil
	}
	return &models.MerchantKpis{MerchantID: merchant.ID}, nil
}

func (d *FixtureDirectory) GetVolumeSeries(_ context.Context, merchant *models.Merchant, days int) ([]models.VolumePoint, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if days <= 0 || days > 365 {
		days = 30
	}
	k := d.kpis[merchant.ID]
	daily := k.Volume30d / 30

	points := make([]models.VolumePoint, 0, days)
	day := time.Now().Truncate(24 * time.Hour).AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		// deterministic sawtooth so charts render something plausible
		points = append(points, models.VolumePoint{
			Day:    day.AddDate(0, 0, i),
			Volume: daily * int64(i%7) / 3,
		})
	}
	return points, nil
}

func (d *FixtureDirectory) GetSpeedHistogram(_ context.Context, merchant *models.Merchant) ([]models.SpeedBucket, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	k := d.kpis[merchant.ID]
	return []models.SpeedBucket{
		{Bucket: "<5m", Count: k.TradeCount30d / 2},
		{Bucket: "5-15m", Count: k.TradeCount30d / 3},
		{Bucket: "15-60m", Count: k.TradeCount30d / 8},
		{Bucket: ">60m", Count: k.TradeCount30d / 20},
	}, nil
}

func (d *FixtureDirectory) GetActiveListings(_ context.Context, merchantID uuid.UUID) ([]models.Listing, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []models.Listing
	for _, l := range d.listings {
		if l.MerchantID != nil && *l.MerchantID == merchantID && l.Status == models.ListingStatusActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (d *FixtureDirectory) GetMyMerchant(_ context.Context, userID uuid.UUID) (*models.Merchant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for i := range d.merchants {
		if d.merchants[i].UserID == userID {
			m := d.merchants[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (d *FixtureDirectory) UpsertMyMerchantProfile(_ context.Context, m *models.Merchant) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for i := range d.merchants {
		if d.merchants[i].UserID == m.UserID {
			m.ID = d.merchants[i].ID
			m.VerificationStatus = d.merchants[i].VerificationStatus
			m.CreatedAt = d.merchants[i].CreatedAt
			m.UpdatedAt = now
			d.merchants[i] = *m
			return nil
		}
	}
	m.ID = uuid.New()
	m.VerificationStatus = models.MerchantStatusPending
	m.CreatedAt = now
	m.UpdatedAt = now
	d.merchants = append(d.merchants, *m)
	return nil
}

func (d *FixtureDirectory) CreateMerchantListing(_ context.Context, l *models.Listing) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	l.ID = uuid.New()
	l.CreatedAt = now
	l.UpdatedAt = now
	d.listings = append(d.listings, *l)
	return nil
}

func (d *FixtureDirectory) GetMyListings(_ context.Context, userID uuid.UUID) ([]models.Listing, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []models.Listing
	for _, l := range d.listings {
		if l.OwnerUserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}
