package models

import (
	"time"

	"github.com/google/uuid"
)

// KYC statuses
const (
	KYCStatusNone     = "none"
	KYCStatusPending  = "pending"
	KYCStatusApproved = "approved"
	KYCStatusRejected = "rejected"
)

type User struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	DisplayName     *string   `json:"display_name,omitempty"`
	StellarAddress  *string   `json:"stellar_address,omitempty"`
	ReputationScore float64   `json:"reputation_score"`
	TotalTrades     int       `json:"total_trades"`
	KYCStatus       string    `json:"kyc_status"`
	NotifyByEmail   bool      `json:"notify_by_email"`
	PaymentMethods  []string  `json:"payment_methods,omitempty"`
	EmailConfirmed  bool      `json:"email_confirmed"`
	CreatedAt       time.Time `json:"created_at"`
	LastActiveAt    time.Time `json:"last_active_at"`
}
