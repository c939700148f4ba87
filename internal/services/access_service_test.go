package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stellar-p2p/backend/internal/models"
	"go.uber.org/zap"
)

type fakeAccessStore struct {
	codes      map[string]*models.AccessCode
	increments int
}

func (f *fakeAccessStore) GetByCode(_ context.Context, code string) (*models.AccessCode, error) {
	c, ok := f.codes[strings.ToUpper(code)]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeAccessStore) IncrementUsage(_ context.Context, code string) (bool, error) {
	c, ok := f.codes[strings.ToUpper(code)]
	if !ok || !c.Active {
		return false, nil
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return false, nil
	}
	c.UsedCount++
	f.increments++
	return true, nil
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	newService := func(c *models.AccessCode) (*AccessService, *fakeAccessStore) {
		store := &fakeAccessStore{codes: map[string]*models.AccessCode{}}
		if c != nil {
			store.codes[strings.ToUpper(c.Code)] = c
		}
		s := NewAccessService(store, zap.NewNop())
		s.now = func() time.Time { return now }
		return s, store
	}

	t.Run("valid code increments exactly once", func(t *testing.T) {
		s, store := newService(&models.AccessCode{Code: "EARLY1", Active: true, MaxUses: 5})
		if err := s.Redeem(ctx, "early1"); err != nil {
			t.Fatal(err)
		}
		if store.increments != 1 {
			t.Errorf("increments = %d, want 1", store.increments)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		s, store := newService(nil)
		err := s.Redeem(ctx, "NOPE")
		if err == nil || err.Error() != "Invalid code" {
			t.Errorf("err = %v", err)
		}
		if store.increments != 0 {
			t.Errorf("rejected code incremented usage")
		}
	})

	t.Run("inactive code", func(t *testing.T) {
		s, _ := newService(&models.AccessCode{Code: "OLD", Active: false})
		if err := s.Redeem(ctx, "OLD"); err == nil || err.Error() != "Invalid code" {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("expired code", func(t *testing.T) {
		s, _ := newService(&models.AccessCode{Code: "LATE", Active: true, ExpiresAt: &past})
		if err := s.Redeem(ctx, "LATE"); err == nil || err.Error() != "Code expired" {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("not yet expired code", func(t *testing.T) {
		s, _ := newService(&models.AccessCode{Code: "FRESH", Active: true, ExpiresAt: &future})
		if err := s.Redeem(ctx, "FRESH"); err != nil {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("usage cap reached", func(t *testing.T) {
		s, store := newService(&models.AccessCode{Code: "FULL", Active: true, MaxUses: 2, UsedCount: 2})
		err := s.Redeem(ctx, "FULL")
		if err == nil || err.Error() != "Code usage limit reached" {
			t.Errorf("err = %v", err)
		}
		if store.increments != 0 {
			t.Errorf("capped code incremented usage")
		}
	})

	t.Run("zero max uses means unlimited", func(t *testing.T) {
		s, _ := newService(&models.AccessCode{Code: "OPEN", Active: true, MaxUses: 0, UsedCount: 999})
		if err := s.Redeem(ctx, "OPEN"); err != nil {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("blank code", func(t *testing.T) {
		s, _ := newService(nil)
		if err := s.Redeem(ctx, "   "); err == nil || err.Error() != "Invalid code" {
			t.Errorf("err = %v", err)
		}
	})
}
