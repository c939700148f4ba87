package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stellar-p2p/backend/internal/models"
	"go.uber.org/zap"
)

// AccessStore is the slice of the access-code repo the service needs. The
// postgres repo satisfies it; tests use an in-memory fake.
type AccessStore interface {
	GetByCode(ctx context.Context, code string) (*models.AccessCode, error)
	IncrementUsage(ctx context.Context, code string) (bool, error)
}

type AccessService struct {
	store AccessStore
	now   func() time.Time
	log   *zap.Logger
}

func NewAccessService(store AccessStore, log *zap.Logger) *AccessService {
	return &AccessService{store: store, now: time.Now, log: log}
}

// Redeem validates an access code and, only when every check passes, burns
// one use. Error strings are the exact texts the gate page shows.
func (s *AccessService) Redeem(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("Invalid code")
	}

	c, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to look up code: %w", err)
	}
	if c == nil || !c.Active {
		return fmt.Errorf("Invalid code")
	}
	if c.ExpiresAt != nil && s.now().After(*c.ExpiresAt) {
		return fmt.Errorf("Code expired")
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return fmt.Errorf("Code usage limit reached")
	}

	// the store re-checks the cap inside the update, so two concurrent
	// redemptions of the last slot cannot both succeed
	ok, err := s.store.IncrementUsage(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to redeem code: %w", err)
	}
	if !ok {
		return fmt.Errorf("Code usage limit reached")
	}

	s.log.Info("access code redeemed", zap.String("code", c.Code))
	return nil
}
