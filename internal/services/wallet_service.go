package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stellar-p2p/backend/internal/config"
	"github.com/stellar-p2p/backend/internal/models"
	"github.com/stellar-p2p/backend/internal/repositories"
	"github.com/stellar-p2p/backend/internal/stellar"
	"go.uber.org/zap"
)

type WalletService struct {
	walletRepo *repositories.WalletRepo
	userRepo   *repositories.UserRepo
	auditRepo  *repositories.AuditRepo
	cfg        *config.Config
	log        *zap.Logger
}

func NewWalletService(
	walletRepo *repositories.WalletRepo,
	userRepo *repositories.UserRepo,
	auditRepo *repositories.AuditRepo,
	cfg *config.Config,
	log *zap.Logger,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		cfg:        cfg,
		log:        log,
	}
}

// IssueChallenge creates the nonce the wallet signs before linking.
func (s *WalletService) IssueChallenge(ctx context.Context, userID *uuid.UUID) (string, error) {
	c, err := s.walletRepo.CreateChallenge(ctx, userID, s.cfg.ChallengeTTL)
	if err != nil {
		return "", fmt.Errorf("failed to create challenge: %w", err)
	}
	return c.Challenge, nil
}

type ConnectWalletRequest struct {
	Network    string        `json:"network"`     // public / testnet
	WalletKind string        `json:"wallet_kind"` // extension / passkey
	ContractID *string       `json:"contract_id,omitempty"`
	Proof      stellar.Proof `json:"proof"`
}

func (s *WalletService) ConnectWallet(ctx context.Context, userID uuid.UUID, req ConnectWalletRequest) (*models.UserWallet, error) {
	// consume the nonce first so a failed verification still burns it
	if _, err := s.walletRepo.ConsumeChallenge(ctx, req.Proof.Challenge); err != nil {
		return nil, fmt.Errorf("invalid or expired challenge: %w", err)
	}

	if !stellar.IsAccountAddress(req.Proof.Address) {
		return nil, fmt.Errorf("invalid stellar account address")
	}
	if req.ContractID != nil && !stellar.IsContractAddress(*req.ContractID) {
		return nil, fmt.Errorf("invalid smart wallet contract id")
	}
	if req.Network != "" && req.Network != s.cfg.StellarNetwork {
		return nil, fmt.Errorf("network mismatch: expected %s, got %s", s.cfg.StellarNetwork, req.Network)
	}

	if err := stellar.VerifyProof(req.Proof); err != nil {
		return nil, fmt.Errorf("wallet proof verification failed: %w", err)
	}

	if err := s.walletRepo.DeactivateAllWallets(ctx, userID); err != nil {
		s.log.Warn("failed to deactivate old wallets", zap.Error(err))
	}

	wallet := &models.UserWallet{
		UserID:         userID,
		Address:        req.Proof.Address,
		Network:        s.cfg.StellarNetwork,
		WalletKind:     req.WalletKind,
		ContractID:     req.ContractID,
		ProofChallenge: req.Proof.Challenge,
		ProofSignature: req.Proof.Signature,
		Verified:       true,
		IsActive:       true,
	}
	if err := s.walletRepo.ConnectWallet(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to save wallet: %w", err)
	}

	// keep the denormalized address on users current
	_ = s.userRepo.SetStellarAddress(ctx, userID, &wallet.Address)

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "wallet_connected",
		EntityType:  "user_wallet",
		EntityID:    &wallet.ID,
		Meta:        map[string]any{"address": wallet.Address, "kind": wallet.WalletKind},
	})

	s.log.Info("wallet connected",
		zap.String("user_id", userID.String()),
		zap.String("address", wallet.Address),
	)
	return wallet, nil
}

func (s *WalletService) DisconnectWallet(ctx context.Context, userID uuid.UUID) error {
	if err := s.walletRepo.DeactivateAllWallets(ctx, userID); err != nil {
		return err
	}
	_ = s.userRepo.SetStellarAddress(ctx, userID, nil)

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "wallet_disconnected",
		EntityType:  "user",
		EntityID:    &userID,
	})
	return nil
}

func (s *WalletService) GetActiveWallet(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error) {
	return s.walletRepo.GetActiveWallet(ctx, userID)
}
