package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/http/dto"
	"github.com/stellar-p2p/backend/internal/passkey"
	"go.uber.org/zap"
)

// PasskeyHandler proxies WebAuthn ceremonies to the hosted relay. Bodies are
// forwarded opaque; the relay owns the ceremony formats.
type PasskeyHandler struct {
	client *passkey.Client
	log    *zap.Logger
}

func NewPasskeyHandler(client *passkey.Client, log *zap.Logger) *PasskeyHandler {
	return &PasskeyHandler{client: client, log: log}
}

// Register completes a passkey registration and returns the smart wallet
// contract.
// POST /passkey/register
func (h *PasskeyHandler) Register(c *fiber.Ctx) error {
	res, err := h.client.Register(c.Context(), c.Body())
	if err != nil {
		return h.relayError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}

// Authenticate completes a passkey assertion.
// POST /passkey/authenticate
func (h *PasskeyHandler) Authenticate(c *fiber.Ctx) error {
	res, err := h.client.Authenticate(c.Context(), c.Body())
	if err != nil {
		return h.relayError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}

// Submit forwards a signed envelope for fee-sponsored submission.
// POST /passkey/submit
func (h *PasskeyHandler) Submit(c *fiber.Ctx) error {
	res, err := h.client.Submit(c.Context(), c.Body())
	if err != nil {
		return h.relayError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}

// Credits reports the remaining sponsored-fee budget.
// GET /passkey/credits
func (h *PasskeyHandler) Credits(c *fiber.Ctx) error {
	res, err := h.client.Credits(c.Context())
	if err != nil {
		return h.relayError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}

func (h *PasskeyHandler) relayError(c *fiber.Ctx, err error) error {
	if errors.Is(err, passkey.ErrNotConfigured) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "passkey relay is not configured, set PASSKEY_RELAY_URL and PASSKEY_RELAY_KEY",
		})
	}
	h.log.Warn("passkey relay error", zap.Error(err))
	return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "passkey relay request failed"})
}
