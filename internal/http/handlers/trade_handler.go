package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/escrow"
	"github.com/stellar-p2p/backend/internal/http/dto"
	"github.com/stellar-p2p/backend/internal/middleware"
	"github.com/stellar-p2p/backend/internal/services"
	"go.uber.org/zap"
)

type TradeHandler struct {
	trades *services.TradeService
	log    *zap.Logger
}

func NewTradeHandler(trades *services.TradeService, log *zap.Logger) *TradeHandler {
	return &TradeHandler{trades: trades, log: log}
}

// GetEscrow returns the escrow view plus the caller's role in it.
// GET /escrows/:engagementId
func (h *TradeHandler) GetEscrow(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	e, err := h.trades.GetEscrow(c.Context(), c.Params("engagementId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "escrow not found"})
	}

	role, _ := h.trades.RoleIn(c.Context(), userID, e)
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"escrow": e,
		"role":   role.String(),
	}})
}

// ListMyEscrows returns escrows where the caller's wallet is a party.
// GET /escrows
func (h *TradeHandler) ListMyEscrows(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	escrows, err := h.trades.ListMyEscrows(c.Context(), userID, c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: escrows})
}

// ReportPayment: buyer declares the fiat payment made.
// POST /escrows/:engagementId/report-payment
func (h *TradeHandler) ReportPayment(c *fiber.Ctx) error {
	var req dto.ReportPaymentRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	userID := middleware.GetUserID(c)
	e, err := h.trades.ReportPayment(c.Context(), userID, c.Params("engagementId"), req.Evidence)
	if err != nil {
		return h.actionError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: e})
}

// ConfirmPayment: seller acknowledges the fiat payment.
// POST /escrows/:engagementId/confirm-payment
func (h *TradeHandler) ConfirmPayment(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	e, err := h.trades.ConfirmPayment(c.Context(), userID, c.Params("engagementId"))
	if err != nil {
		return h.actionError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: e})
}

// DepositFunds: seller funds the escrow.
// POST /escrows/:engagementId/deposit
func (h *TradeHandler) DepositFunds(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	e, err := h.trades.DepositFunds(c.Context(), userID, c.Params("engagementId"))
	if err != nil {
		return h.actionError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: e})
}

// Dispute: either party freezes the escrow.
// POST /escrows/:engagementId/dispute
func (h *TradeHandler) Dispute(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	e, err := h.trades.Dispute(c.Context(), userID, c.Params("engagementId"))
	if err != nil {
		return h.actionError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: e})
}

// ReleaseFunds: seller releases the deposit to the buyer.
// POST /escrows/:engagementId/release
func (h *TradeHandler) ReleaseFunds(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	e, err := h.trades.ReleaseFunds(c.Context(), userID, c.Params("engagementId"))
	if err != nil {
		return h.actionError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: e})
}

// actionError maps coordinator rejections to 403, remote refusals to 409 and
// transport failures to 502; everything else is a 400 state conflict.
func (h *TradeHandler) actionError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	status := fiber.StatusBadRequest
	switch {
	case strings.Contains(msg, "only the") || strings.Contains(msg, "not a party"):
		status = fiber.StatusForbidden
	case errors.Is(err, escrow.ErrRemoteUnavailable):
		status = fiber.StatusBadGateway
		h.log.Warn("escrow service unreachable", zap.Error(err))
	case errors.Is(err, escrow.ErrRemoteRefused):
		status = fiber.StatusConflict
		h.log.Warn("escrow action refused remotely", zap.Error(err))
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg})
}
