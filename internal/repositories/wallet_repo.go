package repositories

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stellar-p2p/backend/internal/models"
)

type WalletRepo struct {
	pool *pgxpool.Pool
}

func NewWalletRepo(pool *pgxpool.Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// --- Challenges (nonce) ---

func (r *WalletRepo) CreateChallenge(ctx context.Context, userID *uuid.UUID, ttl time.Duration) (*models.WalletChallenge, error) {
	c := &models.WalletChallenge{
		Challenge: generateNonce(32),
		UserID:    userID,
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO wallet_challenges (challenge, user_id, expires_at)
		VALUES ($1, $2, now() + $3::interval)
		RETURNING id, created_at, expires_at
	`, c.Challenge, userID, ttl.String()).Scan(&c.ID, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ConsumeChallenge marks the nonce used in the same statement that reads it,
// so a replayed proof cannot race a second consume.
func (r *WalletRepo) ConsumeChallenge(ctx context.Context, challenge string) (*models.WalletChallenge, error) {
	var c models.WalletChallenge
	err := r.pool.QueryRow(ctx, `
		UPDATE wallet_challenges
		SET used = true
		WHERE challenge = $1 AND used = false AND expires_at > now()
		RETURNING id, challenge, user_id, created_at, expires_at, used
	`, challenge).Scan(&c.ID, &c.Challenge, &c.UserID, &c.CreatedAt, &c.ExpiresAt, &c.Used)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// --- User Wallets ---

func (r *WalletRepo) ConnectWallet(ctx context.Context, w *models.UserWallet) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO user_wallets (
			user_id, address, network, wallet_kind, contract_id,
			proof_challenge, proof_signature, verified, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		ON CONFLICT (user_id, address) DO UPDATE SET
			wallet_kind = EXCLUDED.wallet_kind,
			contract_id = COALESCE(EXCLUDED.contract_id, user_wallets.contract_id),
			proof_challenge = EXCLUDED.proof_challenge,
			proof_signature = EXCLUDED.proof_signature,
			verified = EXCLUDED.verified,
			is_active = true,
			disconnected_at = NULL,
			connected_at = now()
		RETURNING id, connected_at
	`, w.UserID, w.Address, w.Network, w.WalletKind, w.ContractID,
		w.ProofChallenge, w.ProofSignature, w.Verified,
	).Scan(&w.ID, &w.ConnectedAt)
}

func (r *WalletRepo) DeactivateAllWallets(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE user_wallets SET is_active = false, disconnected_at = now()
		WHERE user_id = $1 AND is_active = true
	`, userID)
	return err
}

func (r *WalletRepo) DisconnectWallet(ctx context.Context, userID, walletID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE user_wallets SET is_active = false, disconnected_at = now()
		WHERE id = $1 AND user_id = $2
	`, walletID, userID)
	return err
}

func (r *WalletRepo) GetActiveWallet(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error) {
	var w models.UserWallet
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, address, network, wallet_kind, contract_id,
		       verified, connected_at, disconnected_at, is_active
		FROM user_wallets
		WHERE user_id = $1 AND is_active = true
		ORDER BY connected_at DESC LIMIT 1
	`, userID).Scan(
		&w.ID, &w.UserID, &w.Address, &w.Network, &w.WalletKind, &w.ContractID,
		&w.Verified, &w.ConnectedAt, &w.DisconnectedAt, &w.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.UserWallet, error) {
	var w models.UserWallet
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, address, network, wallet_kind, contract_id,
		       verified, connected_at, disconnected_at, is_active
		FROM user_wallets WHERE id = $1
	`, id).Scan(
		&w.ID, &w.UserID, &w.Address, &w.Network, &w.WalletKind, &w.ContractID,
		&w.Verified, &w.ConnectedAt, &w.DisconnectedAt, &w.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func generateNonce(bytes int) string {
	b := make([]byte, bytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
