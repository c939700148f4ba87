package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stellar-p2p/backend/internal/escrow"
	"github.com/stellar-p2p/backend/internal/models"
	"github.com/stellar-p2p/backend/internal/rbac"
	"github.com/stellar-p2p/backend/internal/repositories"
	"go.uber.org/zap"
)

// TradeService glues the escrow coordinator to user identity: it resolves the
// caller's wallet address, loads the escrow, and dispatches the guarded
// action.
type TradeService struct {
	coordinator *escrow.Coordinator
	client      *escrow.Client
	escrowRepo  *repositories.EscrowRepo
	walletRepo  *repositories.WalletRepo
	auditRepo   *repositories.AuditRepo
	log         *zap.Logger
}

func NewTradeService(
	coordinator *escrow.Coordinator,
	client *escrow.Client,
	escrowRepo *repositories.EscrowRepo,
	walletRepo *repositories.WalletRepo,
	auditRepo *repositories.AuditRepo,
	log *zap.Logger,
) *TradeService {
	return &TradeService{
		coordinator: coordinator,
		client:      client,
		escrowRepo:  escrowRepo,
		walletRepo:  walletRepo,
		auditRepo:   auditRepo,
		log:         log,
	}
}

// GetEscrow serves the mirror and falls back to the remote service for
// engagements the mirror has not seen yet.
func (s *TradeService) GetEscrow(ctx context.Context, engagementID string) (*models.Escrow, error) {
	e, err := s.escrowRepo.GetByEngagementID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e, nil
	}

	remote, err := s.client.GetEscrow(ctx, engagementID)
	if err != nil {
		return nil, fmt.Errorf("escrow not found: %w", err)
	}
	e, err = remote.ToModel()
	if err != nil {
		return nil, err
	}
	if saveErr := s.escrowRepo.Save(ctx, e); saveErr != nil {
		s.log.Warn("failed to cache escrow mirror", zap.Error(saveErr))
	}
	return e, nil
}

func (s *TradeService) ListMyEscrows(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Escrow, error) {
	address, err := s.requireWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.escrowRepo.ListByAddress(ctx, address, limit, offset)
}

// RoleIn names which side of the escrow the caller's wallet is on.
func (s *TradeService) RoleIn(ctx context.Context, userID uuid.UUID, e *models.Escrow) (rbac.TradeRole, error) {
	w, err := s.walletRepo.GetActiveWallet(ctx, userID)
	if err != nil {
		return rbac.RoleUnauthorized, nil
	}
	return rbac.RoleFor(e, w.Address), nil
}

func (s *TradeService) ReportPayment(ctx context.Context, userID uuid.UUID, engagementID, evidence string) (*models.Escrow, error) {
	return s.act(ctx, userID, engagementID, rbac.ActionReportPayment, func(e *models.Escrow, addr string) error {
		return s.coordinator.ReportPayment(ctx, e, addr, evidence)
	})
}

func (s *TradeService) ConfirmPayment(ctx context.Context, userID uuid.UUID, engagementID string) (*models.Escrow, error) {
	return s.act(ctx, userID, engagementID, rbac.ActionConfirmPayment, func(e *models.Escrow, addr string) error {
		return s.coordinator.ConfirmPayment(ctx, e, addr)
	})
}

func (s *TradeService) DepositFunds(ctx context.Context, userID uuid.UUID, engagementID string) (*models.Escrow, error) {
	return s.act(ctx, userID, engagementID, rbac.ActionDepositFunds, func(e *models.Escrow, addr string) error {
		return s.coordinator.DepositFunds(ctx, e, addr)
	})
}

func (s *TradeService) Dispute(ctx context.Context, userID uuid.UUID, engagementID string) (*models.Escrow, error) {
	return s.act(ctx, userID, engagementID, rbac.ActionDispute, func(e *models.Escrow, addr string) error {
		return s.coordinator.Dispute(ctx, e, addr)
	})
}

func (s *TradeService) ReleaseFunds(ctx context.Context, userID uuid.UUID, engagementID string) (*models.Escrow, error) {
	return s.act(ctx, userID, engagementID, rbac.ActionReleaseFunds, func(e *models.Escrow, addr string) error {
		return s.coordinator.ReleaseFunds(ctx, e, addr)
	})
}

func (s *TradeService) act(ctx context.Context, userID uuid.UUID, engagementID, action string, fn func(*models.Escrow, string) error) (*models.Escrow, error) {
	address, err := s.requireWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	e, err := s.GetEscrow(ctx, engagementID)
	if err != nil {
		return nil, err
	}

	if err := fn(e, address); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      action,
		EntityType:  "escrow",
		EntityID:    &e.ID,
		Meta:        map[string]any{"engagement_id": engagementID, "address": address},
	})
	return e, nil
}

func (s *TradeService) requireWallet(ctx context.Context, userID uuid.UUID) (string, error) {
	w, err := s.walletRepo.GetActiveWallet(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("connect a wallet before trading")
	}
	return w.Address, nil
}
