package models

import (
	"time"

	"github.com/google/uuid"
)

// Merchant verification statuses
const (
	MerchantStatusPending  = "pending"
	MerchantStatusVerified = "verified"
	MerchantStatusRejected = "rejected"
	MerchantStatusRevoked  = "revoked"
)

// Badge kinds
const (
	BadgeKindSBT          = "sbt"
	BadgeKindNFT          = "nft"
	BadgeKindProgrammatic = "programmatic"
)

type Merchant struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	Slug               string    `json:"slug"`
	DisplayName        string    `json:"display_name"`
	Bio                *string   `json:"bio,omitempty"`
	CountryCode        *string   `json:"country_code,omitempty"`
	AvatarURL          *string   `json:"avatar_url,omitempty"`
	VerificationStatus string    `json:"verification_status"`
	IsPublic           bool      `json:"is_public"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type MerchantKpis struct {
	MerchantID           uuid.UUID `json:"merchant_id"`
	CompletionRatePct    float64   `json:"completion_rate_pct"`
	DisputeRatePct       float64   `json:"dispute_rate_pct"`
	Volume30d            int64     `json:"volume_30d"` // stroops
	MedianReleaseMinutes float64   `json:"median_release_minutes"`
	TradeCount30d        int       `json:"trade_count_30d"`
}

type MerchantBadge struct {
	Code      string    `json:"code"`
	Kind      string    `json:"kind"` // sbt / nft / programmatic
	Label     string    `json:"label"`
	AwardedAt time.Time `json:"awarded_at"`
}

// VolumePoint is one day of a merchant's traded volume series.
type VolumePoint struct {
	Day    time.Time `json:"day"`
	Volume int64     `json:"volume"` // stroops
}

// SpeedBucket is one bin of the release-speed histogram.
type SpeedBucket struct {
	Bucket string `json:"bucket"` // e.g. "<5m", "5-15m", "15-60m", ">60m"
	Count  int    `json:"count"`
}
