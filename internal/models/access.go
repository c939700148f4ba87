package models

import (
	"time"

	"github.com/google/uuid"
)

type AccessCode struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	MaxUses   int        `json:"max_uses"`
	UsedCount int        `json:"used_count"`
	CreatedAt time.Time  `json:"created_at"`
}

type WaitlistSubmission struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Company      *string    `json:"company,omitempty"`
	Role         *string    `json:"role,omitempty"`
	Country      *string    `json:"country,omitempty"`
	Source       *string    `json:"source,omitempty"`
	UseCase      *string    `json:"use_case,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	OTP          *string    `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
