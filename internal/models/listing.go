package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing sides
const (
	ListingTypeBuy  = "buy"
	ListingTypeSell = "sell"
)

// Listing statuses
const (
	ListingStatusActive    = "active"
	ListingStatusPaused    = "paused"
	ListingStatusCompleted = "completed"
	ListingStatusCancelled = "cancelled"
)

// Valid status transitions: from -> []to. Completed and cancelled are
// terminal; deletion is modelled as the cancelled status.
var ValidListingTransitions = map[string][]string{
	ListingStatusActive:    {ListingStatusPaused, ListingStatusCompleted, ListingStatusCancelled},
	ListingStatusPaused:    {ListingStatusActive, ListingStatusCancelled},
	ListingStatusCompleted: {},
	ListingStatusCancelled: {},
}

func IsValidListingTransition(from, to string) bool {
	allowed, ok := ValidListingTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func IsValidListingType(t string) bool {
	return t == ListingTypeBuy || t == ListingTypeSell
}

type Listing struct {
	ID            uuid.UUID  `json:"id"`
	OwnerUserID   uuid.UUID  `json:"owner_user_id"`
	MerchantID    *uuid.UUID `json:"merchant_id,omitempty"`
	Type          string     `json:"type"` // buy / sell
	Token         string     `json:"token"`
	Amount        int64      `json:"amount"` // stroops
	Rate          string     `json:"rate"`   // fiat per token, numeric as string
	FiatCurrency  string     `json:"fiat_currency"`
	PaymentMethod string     `json:"payment_method"`
	Status        string     `json:"status"`
	MinAmount     *int64     `json:"min_amount,omitempty"`
	MaxAmount     *int64     `json:"max_amount,omitempty"`
	Terms         *string    `json:"terms,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ListingStats is the aggregate shape the marketplace page renders.
type ListingStats struct {
	Token        string `json:"token"`
	ActiveCount  int    `json:"active_count"`
	BuyCount     int    `json:"buy_count"`
	SellCount    int    `json:"sell_count"`
	MinRate      string `json:"min_rate"`
	MaxRate      string `json:"max_rate"`
	TotalVolume  int64  `json:"total_volume"` // stroops
	FiatCurrency string `json:"fiat_currency,omitempty"`
}
