package rbac

import "github.com/stellar-p2p/backend/internal/models"

// TradeRole is a party's role within one escrow, derived from wallet address.
type TradeRole int

const (
	RoleUnauthorized TradeRole = iota
	RoleBuyer                  // the service provider: pays fiat, receives tokens
	RoleSeller                 // the approver: deposits tokens, confirms fiat
)

func (r TradeRole) String() string {
	switch r {
	case RoleBuyer:
		return "buyer"
	case RoleSeller:
		return "seller"
	default:
		return "unauthorized"
	}
}

// RoleFor derives the caller's role from an escrow's role addresses. An
// address matching neither party gets no permitted actions.
func RoleFor(e *models.Escrow, address string) TradeRole {
	if address == "" {
		return RoleUnauthorized
	}
	switch address {
	case e.Roles.ServiceProvider:
		return RoleBuyer
	case e.Roles.Approver:
		return RoleSeller
	default:
		return RoleUnauthorized
	}
}

// Escrow lifecycle actions
const (
	ActionReportPayment  = "report_payment"
	ActionConfirmPayment = "confirm_payment"
	ActionDepositFunds   = "deposit_funds"
	ActionDispute        = "dispute"
	ActionReleaseFunds   = "release_funds"
)

// RoleActions defines which lifecycle actions each role may issue.
var RoleActions = map[TradeRole][]string{
	RoleBuyer: {
		ActionReportPayment, ActionDispute,
	},
	RoleSeller: {
		ActionConfirmPayment, ActionDepositFunds, ActionReleaseFunds, ActionDispute,
	},
}

// Can checks whether a role may issue a lifecycle action.
func Can(role TradeRole, action string) bool {
	actions, ok := RoleActions[role]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
