package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/http/dto"
	"github.com/stellar-p2p/backend/internal/models"
)

// MockHandler serves canned escrow payloads so a frontend can be developed
// without the hosted escrow service. The router only mounts it when
// MOCK_MODE is on; when off, the routes simply do not exist.
type MockHandler struct{}

func NewMockHandler() *MockHandler {
	return &MockHandler{}
}

func mockEscrow(engagementID, status string) *models.Escrow {
	e := &models.Escrow{
		EngagementID: engagementID,
		ContractID:   "CBQHNAXSI55GX2GN6D67GK7BHVPSLJUGZQEU7WJ5LKR5PNUCSV4KXXDS",
		Title:        "Mock trade " + engagementID,
		Roles: models.EscrowRoles{
			Approver:        "GBLTXF46JTCGMWFJASKLVTKZSAPSVYZSVYZSBMDHDYKRUBZPHPJQJQOO",
			ServiceProvider: "GDQP2KPQGKIHYJGXNUIYOMHARUARCA7DJT5FO2FFOOKY3B2WSQHG4W37",
		},
		Amount:     1_000_0000000,
		Milestones: []models.Milestone{{Description: "Fiat payment", Status: models.MilestoneStatusPending}},
		Trustline:  models.EscrowTrustline{Address: "CCW67TSZV3SSS2HXMBQ5JFGCKJNXKZM7UQUWUZPUTHXSTZLEO7SJMI75", Decimals: 7},
	}
	switch status {
	case "reported":
		e.ApplyReportPayment("mock-receipt")
	case "funded":
		e.ApplyDeposit()
	case "approved":
		e.ApplyReportPayment("mock-receipt")
		e.ApplyConfirmPayment()
		e.ApplyDeposit()
	case "disputed":
		e.ApplyDeposit()
		e.ApplyDispute()
	case "released":
		e.ApplyReportPayment("mock-receipt")
		e.ApplyConfirmPayment()
		e.ApplyDeposit()
		e.ApplyRelease()
	}
	return e
}

// GetEscrow returns a deterministic escrow in the requested state.
// GET /api/mock/escrows/:engagementId?state=
func (h *MockHandler) GetEscrow(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: mockEscrow(c.Params("engagementId"), c.Query("state", "pending"))})
}

// ListEscrows returns one escrow per lifecycle state.
// GET /api/mock/escrows
func (h *MockHandler) ListEscrows(c *fiber.Ctx) error {
	states := []string{"pending", "reported", "funded", "approved", "disputed", "released"}
	out := make([]*models.Escrow, 0, len(states))
	for i, s := range states {
		out = append(out, mockEscrow(fmt.Sprintf("mock-%d", i+1), s))
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: out})
}
