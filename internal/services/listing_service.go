package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stellar-p2p/backend/internal/events"
	"github.com/stellar-p2p/backend/internal/models"
	"github.com/stellar-p2p/backend/internal/repositories"
	"github.com/stellar-p2p/backend/internal/stellar"
	"go.uber.org/zap"
)

type ListingService struct {
	listingRepo *repositories.ListingRepo
	auditRepo   *repositories.AuditRepo
	assets      *stellar.Registry
	publisher   events.Publisher
	log         *zap.Logger
}

func NewListingService(
	listingRepo *repositories.ListingRepo,
	auditRepo *repositories.AuditRepo,
	assets *stellar.Registry,
	publisher events.Publisher,
	log *zap.Logger,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		auditRepo:   auditRepo,
		assets:      assets,
		publisher:   publisher,
		log:         log,
	}
}

type CreateListingRequest struct {
	Type          string  `json:"type"`
	Token         string  `json:"token"`
	Amount        string  `json:"amount"` // decimal string
	Rate          string  `json:"rate"`
	FiatCurrency  string  `json:"fiat_currency"`
	PaymentMethod string  `json:"payment_method"`
	MinAmount     *string `json:"min_amount,omitempty"`
	MaxAmount     *string `json:"max_amount,omitempty"`
	Terms         *string `json:"terms,omitempty"`
}

func (s *ListingService) Create(ctx context.Context, ownerUserID uuid.UUID, merchantID *uuid.UUID, req CreateListingRequest) (*models.Listing, error) {
	if !models.IsValidListingType(req.Type) {
		return nil, fmt.Errorf("listing type must be buy or sell")
	}
	if _, ok := s.assets.BySymbol(req.Token); !ok {
		return nil, fmt.Errorf("unsupported token: %s", req.Token)
	}
	if req.FiatCurrency == "" || req.PaymentMethod == "" {
		return nil, fmt.Errorf("fiat currency and payment method are required")
	}

	amount, err := stellar.ParseAmount(req.Amount)
	if err != nil || amount <= 0 {
		return nil, fmt.Errorf("invalid amount")
	}

	var minAmount, maxAmount *int64
	if req.MinAmount != nil {
		v, err := stellar.ParseAmount(*req.MinAmount)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid min amount")
		}
		minAmount = &v
	}
	if req.MaxAmount != nil {
		v, err := stellar.ParseAmount(*req.MaxAmount)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid max amount")
		}
		maxAmount = &v
	}
	if minAmount != nil && maxAmount != nil && *minAmount > *maxAmount {
		return nil, fmt.Errorf("min amount exceeds max amount")
	}

	l := &models.Listing{
		OwnerUserID:   ownerUserID,
		MerchantID:    merchantID,
		Type:          req.Type,
		Token:         req.Token,
		Amount:        amount,
		Rate:          req.Rate,
		FiatCurrency:  req.FiatCurrency,
		PaymentMethod: req.PaymentMethod,
		Status:        models.ListingStatusActive,
		MinAmount:     minAmount,
		MaxAmount:     maxAmount,
		Terms:         req.Terms,
	}
	if err := s.listingRepo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &ownerUserID,
		ActorType:   "user",
		Action:      "listing_created",
		EntityType:  "listing",
		EntityID:    &l.ID,
		Meta:        map[string]any{"type": l.Type, "token": l.Token},
	})
	s.publishChange(ctx, l)
	return l, nil
}

func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return s.listingRepo.GetByID(ctx, id)
}

func (s *ListingService) List(ctx context.Context, f repositories.ListingFilter) ([]models.Listing, error) {
	return s.listingRepo.List(ctx, f)
}

func (s *ListingService) Stats(ctx context.Context) ([]models.ListingStats, error) {
	return s.listingRepo.Stats(ctx)
}

type UpdateListingRequest struct {
	Amount        *string `json:"amount,omitempty"`
	Rate          *string `json:"rate,omitempty"`
	FiatCurrency  *string `json:"fiat_currency,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	MinAmount     *string `json:"min_amount,omitempty"`
	MaxAmount     *string `json:"max_amount,omitempty"`
	Terms         *string `json:"terms,omitempty"`
}

func (s *ListingService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateListingRequest) (*models.Listing, error) {
	l, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerUserID != userID {
		return nil, fmt.Errorf("listing belongs to another user")
	}
	if l.Status == models.ListingStatusCompleted || l.Status == models.ListingStatusCancelled {
		return nil, fmt.Errorf("listing is %s and can no longer be edited", l.Status)
	}

	if req.Amount != nil {
		v, err := stellar.ParseAmount(*req.Amount)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid amount")
		}
		l.Amount = v
	}
	if req.Rate != nil {
		l.Rate = *req.Rate
	}
	if req.FiatCurrency != nil {
		l.FiatCurrency = *req.FiatCurrency
	}
	if req.PaymentMethod != nil {
		l.PaymentMethod = *req.PaymentMethod
	}
	if req.MinAmount != nil {
		v, err := stellar.ParseAmount(*req.MinAmount)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid min amount")
		}
		l.MinAmount = &v
	}
	if req.MaxAmount != nil {
		v, err := stellar.ParseAmount(*req.MaxAmount)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid max amount")
		}
		l.MaxAmount = &v
	}
	if req.Terms != nil {
		l.Terms = req.Terms
	}

	if err := s.listingRepo.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	s.publishChange(ctx, l)
	return l, nil
}

// ChangeStatus moves a listing along the status machine. Cancelled doubles as
// deletion.
func (s *ListingService) ChangeStatus(ctx context.Context, userID, id uuid.UUID, status string) (*models.Listing, error) {
	l, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerUserID != userID {
		return nil, fmt.Errorf("listing belongs to another user")
	}
	if !models.IsValidListingTransition(l.Status, status) {
		return nil, fmt.Errorf("cannot move listing from %s to %s", l.Status, status)
	}

	if err := s.listingRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	l.Status = status

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "listing_status_changed",
		EntityType:  "listing",
		EntityID:    &id,
		Meta:        map[string]any{"status": status},
	})
	s.publishChange(ctx, l)
	return l, nil
}

func (s *ListingService) publishChange(ctx context.Context, l *models.Listing) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
		Type: events.EventListingChanged,
		Payload: map[string]any{
			"listing_id": l.ID.String(),
			"status":     l.Status,
			"token":      l.Token,
		},
	})
}
