package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/auth"
	"github.com/stellar-p2p/backend/internal/http/dto"
	"github.com/stellar-p2p/backend/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	identity *services.IdentityService
	guard    *auth.Guard
	log      *zap.Logger
}

func NewAuthHandler(identity *services.IdentityService, guard *auth.Guard, log *zap.Logger) *AuthHandler {
	return &AuthHandler{identity: identity, guard: guard, log: log}
}

// SignUp registers an email/password account and opens a session.
// POST /auth/signup
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	user, token, err := h.identity.SignUp(c.Context(), services.SignUpRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.AuthResponse{Token: token, User: user})
}

// SignIn opens a session for an existing account.
// POST /auth/signin
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	user, token, err := h.identity.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.AuthResponse{Token: token, User: user})
}

// EvaluateGuard answers whether the client must change route given its
// current session and wallet state.
// POST /auth/guard/evaluate
func (h *AuthHandler) EvaluateGuard(c *fiber.Ctx) error {
	var req dto.GuardEvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "path is required"})
	}

	d := h.guard.Evaluate(guardClient(req.ClientID, c), req.Path, req.IsAuthenticated, auth.WalletState{
		Address:   req.WalletAddress,
		Connected: req.WalletConnected,
	})
	return c.JSON(dto.GuardDecisionResponse{
		Redirect:       d.Redirect,
		Target:         d.Target,
		FullNavigation: d.FullNavigation,
	})
}

// ResetGuard clears one client's debounce and dedup state.
// POST /auth/guard/reset
func (h *AuthHandler) ResetGuard(c *fiber.Ctx) error {
	var req dto.GuardResetRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	h.guard.Reset(guardClient(req.ClientID, c))
	return c.JSON(dto.SuccessResponse{OK: true})
}

// guardClient keys guard state per browsing context. Clients that do not
// send an id share a per-IP bucket, which still separates principals.
func guardClient(clientID string, c *fiber.Ctx) string {
	if clientID != "" {
		return clientID
	}
	return "ip:" + c.IP()
}
