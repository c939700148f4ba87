package escrow

import (
	"context"
	"fmt"

	"github.com/stellar-p2p/backend/internal/events"
	"github.com/stellar-p2p/backend/internal/models"
	"github.com/stellar-p2p/backend/internal/rbac"
	"go.uber.org/zap"
)

// API is the slice of the escrow service the coordinator drives.
type API interface {
	ReportPayment(ctx context.Context, engagementID, evidence string) error
	ApproveMilestone(ctx context.Context, engagementID string) error
	FundEscrow(ctx context.Context, engagementID string, amount int64) error
	DisputeEscrow(ctx context.Context, engagementID string) error
	ReleaseFunds(ctx context.Context, engagementID string) error
}

// MirrorStore persists the local escrow copy after a successful remote
// mutation. Save failures are logged, not surfaced: the remote state already
// changed and the worker re-sync will converge the mirror.
type MirrorStore interface {
	Save(ctx context.Context, e *models.Escrow) error
}

// Coordinator guards the five escrow lifecycle transitions. The hosted
// service is the source of truth: every operation calls it first and touches
// the local mirror only after the remote call succeeded, applying exactly
// the fields the API documents for that transition.
type Coordinator struct {
	api       API
	mirror    MirrorStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewCoordinator(api API, mirror MirrorStore, publisher events.Publisher, log *zap.Logger) *Coordinator {
	return &Coordinator{api: api, mirror: mirror, publisher: publisher, log: log}
}

// ReportPayment: the buyer declares the fiat leg paid and attaches evidence.
func (c *Coordinator) ReportPayment(ctx context.Context, e *models.Escrow, actor, evidence string) error {
	if err := c.authorize(e, actor, rbac.ActionReportPayment); err != nil {
		return err
	}
	if !e.CanReportPayment() {
		if e.Milestone().Status == models.MilestoneStatusPendingApproval {
			return fmt.Errorf("payment already reported and awaiting confirmation")
		}
		return fmt.Errorf("escrow is settled, payment can no longer be reported")
	}

	if err := c.api.ReportPayment(ctx, e.EngagementID, evidence); err != nil {
		return fmt.Errorf("report payment: %w", err)
	}

	e.ApplyReportPayment(evidence)
	c.sync(ctx, e, "payment_reported")
	return nil
}

// ConfirmPayment: the seller acknowledges the fiat payment arrived.
func (c *Coordinator) ConfirmPayment(ctx context.Context, e *models.Escrow, actor string) error {
	if err := c.authorize(e, actor, rbac.ActionConfirmPayment); err != nil {
		return err
	}
	if !e.CanConfirmPayment() {
		return fmt.Errorf("milestone already approved")
	}

	if err := c.api.ApproveMilestone(ctx, e.EngagementID); err != nil {
		return fmt.Errorf("confirm payment: %w", err)
	}

	e.ApplyConfirmPayment()
	c.sync(ctx, e, "payment_confirmed")
	return nil
}

// DepositFunds: the seller funds the escrow with the full trade amount.
func (c *Coordinator) DepositFunds(ctx context.Context, e *models.Escrow, actor string) error {
	if err := c.authorize(e, actor, rbac.ActionDepositFunds); err != nil {
		return err
	}
	if !e.CanDeposit() {
		if e.Balance != 0 {
			return fmt.Errorf("escrow is already funded")
		}
		return fmt.Errorf("escrow is settled, funds can no longer be deposited")
	}

	if err := c.api.FundEscrow(ctx, e.EngagementID, e.Amount); err != nil {
		return fmt.Errorf("deposit funds: %w", err)
	}

	e.ApplyDeposit()
	c.sync(ctx, e, "funds_deposited")
	return nil
}

// Dispute: either party freezes a funded escrow pending resolution.
func (c *Coordinator) Dispute(ctx context.Context, e *models.Escrow, actor string) error {
	if err := c.authorize(e, actor, rbac.ActionDispute); err != nil {
		return err
	}
	if !e.CanDispute() {
		if e.Balance == 0 {
			return fmt.Errorf("escrow has no funds to dispute")
		}
		return fmt.Errorf("escrow is already disputed or settled")
	}

	if err := c.api.DisputeEscrow(ctx, e.EngagementID); err != nil {
		return fmt.Errorf("dispute escrow: %w", err)
	}

	e.ApplyDispute()
	c.sync(ctx, e, "disputed")
	return nil
}

// ReleaseFunds: the seller releases the deposit to the buyer once the
// milestone is approved.
func (c *Coordinator) ReleaseFunds(ctx context.Context, e *models.Escrow, actor string) error {
	if err := c.authorize(e, actor, rbac.ActionReleaseFunds); err != nil {
		return err
	}
	if !e.CanRelease() {
		if !e.Milestone().Approved {
			return fmt.Errorf("payment must be confirmed before release")
		}
		return fmt.Errorf("escrow has no funds to release")
	}

	if err := c.api.ReleaseFunds(ctx, e.EngagementID); err != nil {
		return fmt.Errorf("release funds: %w", err)
	}

	e.ApplyRelease()
	c.sync(ctx, e, "released")
	return nil
}

func (c *Coordinator) authorize(e *models.Escrow, actor, action string) error {
	role := rbac.RoleFor(e, actor)
	if role == rbac.RoleUnauthorized {
		return fmt.Errorf("wallet %s is not a party to this escrow", actor)
	}
	if !rbac.Can(role, action) {
		return fmt.Errorf("only the %s can perform this action", counterpart(role))
	}
	return nil
}

// counterpart names the role that IS allowed, for the error message.
func counterpart(role rbac.TradeRole) string {
	if role == rbac.RoleBuyer {
		return rbac.RoleSeller.String()
	}
	return rbac.RoleBuyer.String()
}

// sync persists the mirror and emits a status event, best-effort.
func (c *Coordinator) sync(ctx context.Context, e *models.Escrow, status string) {
	if err := c.mirror.Save(ctx, e); err != nil {
		c.log.Warn("failed to persist escrow mirror, worker will re-sync",
			zap.String("engagement_id", e.EngagementID),
			zap.Error(err),
		)
	}
	if c.publisher != nil {
		_ = c.publisher.Publish(ctx, events.StreamEscrow, events.Event{
			Type: events.EventEscrowStatusChanged,
			Payload: map[string]any{
				"engagement_id": e.EngagementID,
				"status":        status,
				"balance":       e.Balance,
			},
		})
	}
}
