package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/http/dto"
	"github.com/stellar-p2p/backend/internal/middleware"
	"github.com/stellar-p2p/backend/internal/services"
	"go.uber.org/zap"
)

type UserHandler struct {
	identity *services.IdentityService
	log      *zap.Logger
}

func NewUserHandler(identity *services.IdentityService, log *zap.Logger) *UserHandler {
	return &UserHandler{identity: identity, log: log}
}

// GetMe returns the caller's profile.
// GET /me
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	user, err := h.identity.GetProfile(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

// UpdateMe patches profile fields.
// PUT /me
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var req services.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	userID := middleware.GetUserID(c)
	user, err := h.identity.UpdateProfile(c.Context(), userID, req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

// DevConfirmEmail marks the caller's email confirmed without a round trip.
// Only enabled when ALLOW_DEV_CONFIRM is set.
// POST /me/dev-confirm
func (h *UserHandler) DevConfirmEmail(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if err := h.identity.DevConfirmEmail(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
