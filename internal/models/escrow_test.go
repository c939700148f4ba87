package models

import "testing"

func funded(balance int64) *Escrow {
	return &Escrow{
		Amount:     1000_0000000,
		Balance:    balance,
		Milestones: []Milestone{{Status: MilestoneStatusPending}},
	}
}

func TestCanReportPayment(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Escrow)
		expected bool
	}{
		{"fresh escrow", func(e *Escrow) {}, true},
		{"already pending approval", func(e *Escrow) {
			e.Milestones[0].Status = MilestoneStatusPendingApproval
		}, false},
		{"released", func(e *Escrow) { e.Flags.Released = true }, false},
		{"resolved", func(e *Escrow) { e.Flags.Resolved = true }, false},
		{"re-report after rejection", func(e *Escrow) {
			e.Milestones[0].Status = MilestoneStatusRejected
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := funded(0)
			tt.mutate(e)
			if got := e.CanReportPayment(); got != tt.expected {
				t.Errorf("CanReportPayment() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCanConfirmPayment(t *testing.T) {
	e := funded(0)
	if !e.CanConfirmPayment() {
		t.Error("expected confirm allowed on unapproved milestone")
	}
	e.ApplyConfirmPayment()
	if e.CanConfirmPayment() {
		t.Error("expected confirm rejected once milestone approved")
	}
	if m := e.Milestone(); m.Status != MilestoneStatusApproved || !m.Approved {
		t.Errorf("ApplyConfirmPayment left milestone %+v", m)
	}
}

func TestCanDeposit(t *testing.T) {
	tests := []struct {
		name     string
		escrow   *Escrow
		expected bool
	}{
		{"zero balance", funded(0), true},
		{"already funded", funded(1000_0000000), false},
		{"released", func() *Escrow { e := funded(0); e.Flags.Released = true; return e }(), false},
		{"resolved", func() *Escrow { e := funded(0); e.Flags.Resolved = true; return e }(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.escrow.CanDeposit(); got != tt.expected {
				t.Errorf("CanDeposit() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestApplyDepositSetsBalanceToAmount(t *testing.T) {
	e := funded(0)
	e.ApplyDeposit()
	if e.Balance != e.Amount {
		t.Errorf("balance = %d, want %d", e.Balance, e.Amount)
	}
}

func TestCanDispute(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Escrow)
		expected bool
	}{
		{"funded escrow", func(e *Escrow) {}, true},
		{"unfunded", func(e *Escrow) { e.Balance = 0 }, false},
		{"already disputed", func(e *Escrow) { e.Flags.Disputed = true }, false},
		{"released", func(e *Escrow) { e.Flags.Released = true }, false},
		{"resolved", func(e *Escrow) { e.Flags.Resolved = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := funded(1000_0000000)
			tt.mutate(e)
			if got := e.CanDispute(); got != tt.expected {
				t.Errorf("CanDispute() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCanRelease(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Escrow)
		expected bool
	}{
		{"approved and funded", func(e *Escrow) {}, true},
		{"milestone not approved", func(e *Escrow) {
			e.Milestones[0].Approved = false
			e.Milestones[0].Status = MilestoneStatusPendingApproval
		}, false},
		{"zero balance", func(e *Escrow) { e.Balance = 0 }, false},
		{"disputed", func(e *Escrow) { e.Flags.Disputed = true }, false},
		{"already released", func(e *Escrow) { e.Flags.Released = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := funded(1000_0000000)
			e.Milestones[0] = Milestone{Status: MilestoneStatusApproved, Approved: true}
			tt.mutate(e)
			if got := e.CanRelease(); got != tt.expected {
				t.Errorf("CanRelease() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestApplyReleaseZeroesBalance(t *testing.T) {
	e := funded(1000_0000000)
	e.Milestones[0] = Milestone{Status: MilestoneStatusApproved, Approved: true}
	e.ApplyRelease()
	if e.Balance != 0 {
		t.Errorf("balance = %d, want 0 after release", e.Balance)
	}
	if !e.Flags.Released {
		t.Error("released flag not set")
	}
	// released and disputed are mutually exclusive terminal flags
	if e.CanDispute() {
		t.Error("dispute must be rejected after release")
	}
}

func TestListingTransitions(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{ListingStatusActive, ListingStatusPaused, true},
		{ListingStatusActive, ListingStatusCompleted, true},
		{ListingStatusActive, ListingStatusCancelled, true},
		{ListingStatusPaused, ListingStatusActive, true},
		{ListingStatusPaused, ListingStatusCancelled, true},
		{ListingStatusPaused, ListingStatusCompleted, false},
		{ListingStatusCompleted, ListingStatusActive, false},
		{ListingStatusCancelled, ListingStatusActive, false},
		{"nonexistent", ListingStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := IsValidListingTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("IsValidListingTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}
