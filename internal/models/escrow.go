package models

import (
	"time"

	"github.com/google/uuid"
)

// Milestone statuses (single-release escrows carry exactly one milestone)
const (
	MilestoneStatusPending         = "pending"
	MilestoneStatusPendingApproval = "pendingApproval"
	MilestoneStatusApproved        = "approved"
	MilestoneStatusRejected        = "rejected"
)

type Milestone struct {
	Description string `json:"description"`
	Status      string `json:"status"`
	Approved    bool   `json:"approved"`
	Evidence    string `json:"evidence,omitempty"`
}

type EscrowRoles struct {
	Approver        string `json:"approver"`         // seller address
	ServiceProvider string `json:"service_provider"` // buyer address
	ReleaseSigner   string `json:"release_signer,omitempty"`
	DisputeResolver string `json:"dispute_resolver,omitempty"`
}

type EscrowFlags struct {
	Disputed bool `json:"disputed"`
	Resolved bool `json:"resolved"`
	Released bool `json:"released"`
}

type EscrowTrustline struct {
	Address  string `json:"address"` // token contract address
	Decimals int    `json:"decimals"`
}

// Escrow is the local mirror of a trade's trust arrangement. The hosted
// escrow service is the source of truth; this copy can go stale and is
// refreshed by the worker or on the next successful action.
type Escrow struct {
	ID           uuid.UUID       `json:"id"`
	EngagementID string          `json:"engagement_id"`
	ContractID   string          `json:"contract_id,omitempty"`
	ListingID    *uuid.UUID      `json:"listing_id,omitempty"`
	Title        string          `json:"title,omitempty"`
	Roles        EscrowRoles     `json:"roles"`
	Amount       int64           `json:"amount"`  // stroops (7 decimals)
	Balance      int64           `json:"balance"` // non-zero only between deposit and release/resolve
	Milestones   []Milestone     `json:"milestones"`
	Flags        EscrowFlags     `json:"flags"`
	Trustline    EscrowTrustline `json:"trustline"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Milestone returns the single release milestone, or a zero value when the
// mirror has not been hydrated yet.
func (e *Escrow) Milestone() Milestone {
	if len(e.Milestones) == 0 {
		return Milestone{Status: MilestoneStatusPending}
	}
	return e.Milestones[0]
}

func (e *Escrow) setMilestone(m Milestone) {
	if len(e.Milestones) == 0 {
		e.Milestones = []Milestone{m}
		return
	}
	e.Milestones[0] = m
}

// terminal reports whether the escrow reached a state no lifecycle action
// may touch.
func (e *Escrow) terminal() bool {
	return e.Flags.Resolved || e.Flags.Released
}

// CanReportPayment: buyer announces the fiat payment. Rejected when a report
// is already awaiting approval or the escrow is settled.
func (e *Escrow) CanReportPayment() bool {
	return !e.terminal() && e.Milestone().Status != MilestoneStatusPendingApproval
}

// CanConfirmPayment: seller acknowledges the fiat payment arrived.
func (e *Escrow) CanConfirmPayment() bool {
	return !e.terminal() && !e.Milestone().Approved
}

// CanDeposit: seller funds the escrow. Balance must still be zero.
func (e *Escrow) CanDeposit() bool {
	return !e.terminal() && e.Balance == 0
}

// CanDispute: either party contests a funded escrow.
func (e *Escrow) CanDispute() bool {
	return !e.Flags.Disputed && !e.terminal() && e.Balance != 0
}

// CanRelease: seller releases funds after approving the milestone.
func (e *Escrow) CanRelease() bool {
	return e.Milestone().Approved && e.Balance != 0 && !e.Flags.Released && !e.Flags.Disputed
}

// ApplyReportPayment mirrors the fields the escrow API documents for a
// payment report. Call only after the remote mutation succeeded.
func (e *Escrow) ApplyReportPayment(evidence string) {
	m := e.Milestone()
	m.Status = MilestoneStatusPendingApproval
	m.Evidence = evidence
	e.setMilestone(m)
}

func (e *Escrow) ApplyConfirmPayment() {
	m := e.Milestone()
	m.Status = MilestoneStatusApproved
	m.Approved = true
	e.setMilestone(m)
}

func (e *Escrow) ApplyDeposit() {
	e.Balance = e.Amount
}

func (e *Escrow) ApplyDispute() {
	e.Flags.Disputed = true
}

func (e *Escrow) ApplyRelease() {
	e.Flags.Released = true
	e.Balance = 0
}
