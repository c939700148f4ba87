package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/http/dto"
	"github.com/stellar-p2p/backend/internal/services"
	"go.uber.org/zap"
)

type WaitlistHandler struct {
	waitlist *services.WaitlistService
	log      *zap.Logger
}

func NewWaitlistHandler(waitlist *services.WaitlistService, log *zap.Logger) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist, log: log}
}

// Join records a submission and emails the verification code.
// POST /waitlist
func (h *WaitlistHandler) Join(c *fiber.Ctx) error {
	var req services.JoinWaitlistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	res, err := h.waitlist.Join(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.WaitlistJoinResponse{OK: true, OTPSent: res.OTPSent})
}

// RequestOTP re-sends a verification code to an email already on the list.
// POST /waitlist/request-otp
func (h *WaitlistHandler) RequestOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	sent, err := h.waitlist.RequestOTP(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrNotOnWaitlist) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.WaitlistJoinResponse{OK: true, OTPSent: sent})
}

// VerifyOTP consumes the emailed code.
// POST /waitlist/verify
func (h *WaitlistHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if err := h.waitlist.VerifyOTP(c.Context(), req.Email, req.OTP); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// Status reports whether an email is on the waitlist and verified.
// GET /waitlist/status?email=
func (h *WaitlistHandler) Status(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "email is required"})
	}

	sub, err := h.waitlist.Status(c.Context(), email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if sub == nil {
		return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{"joined": false}})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"joined":   true,
		"verified": sub.VerifiedAt != nil,
	}})
}
