package models

import (
	"time"

	"github.com/google/uuid"
)

type UserWallet struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Address        string     `json:"address"` // G... account id
	Network        string     `json:"network"` // public/testnet
	WalletKind     string     `json:"wallet_kind"` // extension / passkey
	ContractID     *string    `json:"contract_id,omitempty"` // smart-wallet contract for passkey wallets
	ProofChallenge string     `json:"-"`
	ProofSignature string     `json:"-"`
	Verified       bool       `json:"verified"`
	ConnectedAt    time.Time  `json:"connected_at"`
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`
	IsActive       bool       `json:"is_active"`
}

// WalletChallenge is a single-use nonce the wallet signs to prove key
// ownership before linking.
type WalletChallenge struct {
	ID        uuid.UUID  `json:"id"`
	Challenge string     `json:"challenge"`
	UserID    *uuid.UUID `json:"-"`
	CreatedAt time.Time  `json:"-"`
	ExpiresAt time.Time  `json:"-"`
	Used      bool       `json:"-"`
}
