package rbac

import (
	"testing"

	"github.com/stellar-p2p/backend/internal/models"
)

const (
	sellerAddr = "GSELLER7XWPMMFCMQW3E5EGPKQYBNRGUDPXDFNTJ4EDWPGHSDFZJHZVT"
	buyerAddr  = "GBUYERX4V2HLWDQX2RMSLKQGFEYBNRGUDPXDFNTJ4EDWPGHSDFZJQQ2K"
)

func testEscrow() *models.Escrow {
	return &models.Escrow{
		Roles: models.EscrowRoles{
			Approver:        sellerAddr,
			ServiceProvider: buyerAddr,
		},
	}
}

func TestRoleFor(t *testing.T) {
	e := testEscrow()

	tests := []struct {
		name     string
		address  string
		expected TradeRole
	}{
		{"buyer address", buyerAddr, RoleBuyer},
		{"seller address", sellerAddr, RoleSeller},
		{"stranger", "GSTRANGERAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", RoleUnauthorized},
		{"empty address", "", RoleUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleFor(e, tt.address); got != tt.expected {
				t.Errorf("RoleFor(%q) = %v, want %v", tt.address, got, tt.expected)
			}
		})
	}
}

func TestCan(t *testing.T) {
	tests := []struct {
		role     TradeRole
		action   string
		expected bool
	}{
		{RoleBuyer, ActionReportPayment, true},
		{RoleBuyer, ActionDispute, true},
		{RoleBuyer, ActionConfirmPayment, false},
		{RoleBuyer, ActionDepositFunds, false},
		{RoleBuyer, ActionReleaseFunds, false},

		{RoleSeller, ActionConfirmPayment, true},
		{RoleSeller, ActionDepositFunds, true},
		{RoleSeller, ActionReleaseFunds, true},
		{RoleSeller, ActionDispute, true},
		{RoleSeller, ActionReportPayment, false},

		{RoleUnauthorized, ActionReportPayment, false},
		{RoleUnauthorized, ActionDispute, false},
		{RoleUnauthorized, ActionReleaseFunds, false},
	}

	for _, tt := range tests {
		t.Run(tt.role.String()+"_"+tt.action, func(t *testing.T) {
			if got := Can(tt.role, tt.action); got != tt.expected {
				t.Errorf("Can(%v, %q) = %v, want %v", tt.role, tt.action, got, tt.expected)
			}
		})
	}
}
