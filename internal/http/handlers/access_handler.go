package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/http/dto"
	"github.com/stellar-p2p/backend/internal/services"
	"go.uber.org/zap"
)

type AccessHandler struct {
	access *services.AccessService
	log    *zap.Logger
}

func NewAccessHandler(access *services.AccessService, log *zap.Logger) *AccessHandler {
	return &AccessHandler{access: access, log: log}
}

// Redeem burns one use of an early-access code.
// POST /access/redeem
func (h *AccessHandler) Redeem(c *fiber.Ctx) error {
	var req dto.RedeemAccessCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if err := h.access.Redeem(c.Context(), req.Code); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
