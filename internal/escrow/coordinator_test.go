package escrow

import (
	"context"
	"errors"
	"testing"

	"github.com/stellar-p2p/backend/internal/models"
	"go.uber.org/zap"
)

const (
	sellerAddr   = "GSELLER7XWPMMFCMQW3E5EGPKQYBNRGUDPXDFNTJ4EDWPGHSDFZJHZVT"
	buyerAddr    = "GBUYERX4V2HLWDQX2RMSLKQGFEYBNRGUDPXDFNTJ4EDWPGHSDFZJQQ2K"
	strangerAddr = "GSTRANGERAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
)

type fakeAPI struct {
	calls []string
	err   error
}

func (f *fakeAPI) record(name string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeAPI) ReportPayment(_ context.Context, _, _ string) error {
	return f.record("report")
}
func (f *fakeAPI) ApproveMilestone(_ context.Context, _ string) error {
	return f.record("approve")
}
func (f *fakeAPI) FundEscrow(_ context.Context, _ string, _ int64) error {
	return f.record("fund")
}
func (f *fakeAPI) DisputeEscrow(_ context.Context, _ string) error {
	return f.record("dispute")
}
func (f *fakeAPI) ReleaseFunds(_ context.Context, _ string) error {
	return f.record("release")
}

type fakeMirror struct {
	saved int
}

func (f *fakeMirror) Save(_ context.Context, _ *models.Escrow) error {
	f.saved++
	return nil
}

func newTestCoordinator() (*Coordinator, *fakeAPI, *fakeMirror) {
	api := &fakeAPI{}
	mirror := &fakeMirror{}
	return NewCoordinator(api, mirror, nil, zap.NewNop()), api, mirror
}

func newEscrow() *models.Escrow {
	return &models.Escrow{
		EngagementID: "eng-1",
		Roles: models.EscrowRoles{
			Approver:        sellerAddr,
			ServiceProvider: buyerAddr,
		},
		Amount:     500_0000000,
		Milestones: []models.Milestone{{Status: models.MilestoneStatusPending}},
	}
}

func TestReportPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("buyer reports payment", func(t *testing.T) {
		c, api, mirror := newTestCoordinator()
		e := newEscrow()

		if err := c.ReportPayment(ctx, e, buyerAddr, "receipt-123"); err != nil {
			t.Fatal(err)
		}
		if m := e.Milestone(); m.Status != models.MilestoneStatusPendingApproval || m.Evidence != "receipt-123" {
			t.Errorf("milestone = %+v", m)
		}
		if len(api.calls) != 1 || api.calls[0] != "report" {
			t.Errorf("api calls = %v", api.calls)
		}
		if mirror.saved != 1 {
			t.Errorf("mirror saved %d times, want 1", mirror.saved)
		}
	})

	t.Run("second report before confirmation rejected", func(t *testing.T) {
		c, api, _ := newTestCoordinator()
		e := newEscrow()

		if err := c.ReportPayment(ctx, e, buyerAddr, "first"); err != nil {
			t.Fatal(err)
		}
		if err := c.ReportPayment(ctx, e, buyerAddr, "second"); err == nil {
			t.Fatal("expected rejection of duplicate report")
		}
		if len(api.calls) != 1 {
			t.Errorf("duplicate report must not reach the API, calls = %v", api.calls)
		}
		if e.Milestone().Evidence != "first" {
			t.Errorf("evidence overwritten: %q", e.Milestone().Evidence)
		}
	})

	t.Run("seller cannot report", func(t *testing.T) {
		c, api, _ := newTestCoordinator()
		if err := c.ReportPayment(ctx, newEscrow(), sellerAddr, "x"); err == nil {
			t.Error("expected role rejection")
		}
		if len(api.calls) != 0 {
			t.Errorf("rejected action reached the API: %v", api.calls)
		}
	})

	t.Run("stranger cannot report", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		if err := c.ReportPayment(ctx, newEscrow(), strangerAddr, "x"); err == nil {
			t.Error("expected rejection for non-party wallet")
		}
	})
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("seller confirms", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		e := newEscrow()
		if err := c.ConfirmPayment(ctx, e, sellerAddr); err != nil {
			t.Fatal(err)
		}
		if m := e.Milestone(); !m.Approved || m.Status != models.MilestoneStatusApproved {
			t.Errorf("milestone = %+v", m)
		}
	})

	t.Run("double confirm rejected", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		e := newEscrow()
		_ = c.ConfirmPayment(ctx, e, sellerAddr)
		if err := c.ConfirmPayment(ctx, e, sellerAddr); err == nil {
			t.Error("expected rejection, milestone already approved")
		}
	})

	t.Run("buyer cannot confirm", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		if err := c.ConfirmPayment(ctx, newEscrow(), buyerAddr); err == nil {
			t.Error("expected role rejection")
		}
	})
}

func TestDepositFunds(t *testing.T) {
	ctx := context.Background()

	t.Run("seller deposits", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		e := newEscrow()
		if err := c.DepositFunds(ctx, e, sellerAddr); err != nil {
			t.Fatal(err)
		}
		if e.Balance != e.Amount {
			t.Errorf("balance = %d, want %d", e.Balance, e.Amount)
		}
	})

	t.Run("buyer cannot deposit", func(t *testing.T) {
		c, api, _ := newTestCoordinator()
		e := newEscrow()
		if err := c.DepositFunds(ctx, e, buyerAddr); err == nil {
			t.Error("expected role rejection")
		}
		if e.Balance != 0 {
			t.Errorf("balance mutated to %d on rejected call", e.Balance)
		}
		if len(api.calls) != 0 {
			t.Errorf("api calls = %v", api.calls)
		}
	})

	t.Run("double deposit rejected", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		e := newEscrow()
		_ = c.DepositFunds(ctx, e, sellerAddr)
		if err := c.DepositFunds(ctx, e, sellerAddr); err == nil {
			t.Error("expected rejection, escrow already funded")
		}
	})
}

func TestDispute(t *testing.T) {
	ctx := context.Background()

	t.Run("either party can dispute a funded escrow", func(t *testing.T) {
		for _, actor := range []string{buyerAddr, sellerAddr} {
			c, _, _ := newTestCoordinator()
			e := newEscrow()
			e.Balance = e.Amount
			if err := c.Dispute(ctx, e, actor); err != nil {
				t.Errorf("dispute by %s: %v", actor, err)
			}
			if !e.Flags.Disputed {
				t.Error("disputed flag not set")
			}
		}
	})

	t.Run("unfunded escrow cannot be disputed", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		if err := c.Dispute(ctx, newEscrow(), buyerAddr); err == nil {
			t.Error("expected rejection, nothing at stake")
		}
	})

	t.Run("released escrow cannot be disputed", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		e := newEscrow()
		e.Balance = e.Amount
		e.Flags.Released = true
		if err := c.Dispute(ctx, e, buyerAddr); err == nil {
			t.Error("released and disputed are mutually exclusive")
		}
	})
}

func TestReleaseFunds(t *testing.T) {
	ctx := context.Background()

	approvedFunded := func() *models.Escrow {
		e := newEscrow()
		e.Balance = e.Amount
		e.Milestones[0] = models.Milestone{Status: models.MilestoneStatusApproved, Approved: true}
		return e
	}

	t.Run("seller releases approved funded escrow", func(t *testing.T) {
		c, _, mirror := newTestCoordinator()
		e := approvedFunded()
		if err := c.ReleaseFunds(ctx, e, sellerAddr); err != nil {
			t.Fatal(err)
		}
		if e.Balance != 0 || !e.Flags.Released {
			t.Errorf("escrow after release: balance=%d flags=%+v", e.Balance, e.Flags)
		}
		if mirror.saved != 1 {
			t.Errorf("mirror saved %d times, want 1", mirror.saved)
		}
	})

	t.Run("release without approval rejected", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		e := newEscrow()
		e.Balance = e.Amount
		if err := c.ReleaseFunds(ctx, e, sellerAddr); err == nil {
			t.Error("expected rejection, milestone not approved")
		}
	})

	t.Run("release with zero balance rejected", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		e := newEscrow()
		e.Milestones[0] = models.Milestone{Status: models.MilestoneStatusApproved, Approved: true}
		if err := c.ReleaseFunds(ctx, e, sellerAddr); err == nil {
			t.Error("expected rejection, nothing to release")
		}
	})

	t.Run("buyer cannot release", func(t *testing.T) {
		c, _, _ := newTestCoordinator()
		if err := c.ReleaseFunds(ctx, approvedFunded(), buyerAddr); err == nil {
			t.Error("expected role rejection")
		}
	})
}

func TestRemoteFailureLeavesMirrorUntouched(t *testing.T) {
	ctx := context.Background()
	c, api, mirror := newTestCoordinator()
	api.err = errors.New("escrow service returned 502")

	e := newEscrow()
	if err := c.ReportPayment(ctx, e, buyerAddr, "receipt"); err == nil {
		t.Fatal("expected remote error to surface")
	}
	if m := e.Milestone(); m.Status != models.MilestoneStatusPending || m.Evidence != "" {
		t.Errorf("local state mutated on remote failure: %+v", m)
	}
	if mirror.saved != 0 {
		t.Errorf("mirror saved on remote failure")
	}

	if err := c.DepositFunds(ctx, e, sellerAddr); err == nil {
		t.Fatal("expected remote error to surface")
	}
	if e.Balance != 0 {
		t.Errorf("balance mutated on remote failure: %d", e.Balance)
	}
}
