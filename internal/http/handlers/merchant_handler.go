package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/http/dto"
	"github.com/stellar-p2p/backend/internal/merchantdata"
	"github.com/stellar-p2p/backend/internal/middleware"
	"github.com/stellar-p2p/backend/internal/models"
	"go.uber.org/zap"
)

type MerchantHandler struct {
	directory merchantdata.Directory
	log       *zap.Logger
}

func NewMerchantHandler(directory merchantdata.Directory, log *zap.Logger) *MerchantHandler {
	return &MerchantHandler{directory: directory, log: log}
}

// ListMerchants is the public storefront index.
// GET /merchants
func (h *MerchantHandler) ListMerchants(c *fiber.Ctx) error {
	merchants, err := h.directory.ListPublicMerchants(c.Context(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		h.log.Error("failed to list merchants", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: merchants})
}

// GetMerchant returns one public merchant profile with badges and KPIs.
// GET /merchants/:slug
func (h *MerchantHandler) GetMerchant(c *fiber.Ctx) error {
	m, err := h.directory.GetPublicMerchantBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		h.log.Error("failed to load merchant", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if m == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "merchant not found"})
	}

	badges, err := h.directory.GetBadges(c.Context(), m.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	kpis, err := h.directory.GetKpis(c.Context(), m)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"merchant": m,
		"badges":   badges,
		"kpis":     kpis,
	}})
}

// GetMerchantCharts serves the volume series and release-speed histogram.
// GET /merchants/:slug/charts
func (h *MerchantHandler) GetMerchantCharts(c *fiber.Ctx) error {
	m, err := h.directory.GetPublicMerchantBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if m == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "merchant not found"})
	}

	volume, err := h.directory.GetVolumeSeries(c.Context(), m, c.QueryInt("days", 30))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	speed, err := h.directory.GetSpeedHistogram(c.Context(), m)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"volume_series":   volume,
		"speed_histogram": speed,
	}})
}

// GetMerchantListings serves a merchant's live offers, active only.
// GET /merchants/:slug/listings
func (h *MerchantHandler) GetMerchantListings(c *fiber.Ctx) error {
	m, err := h.directory.GetPublicMerchantBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if m == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "merchant not found"})
	}

	listings, err := h.directory.GetActiveListings(c.Context(), m.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: listings})
}

// GetMyMerchant returns the caller's merchant profile, or null.
// GET /me/merchant
func (h *MerchantHandler) GetMyMerchant(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	m, err := h.directory.GetMyMerchant(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: m})
}

// UpsertMyMerchant creates or updates the caller's merchant profile.
// PUT /me/merchant
func (h *MerchantHandler) UpsertMyMerchant(c *fiber.Ctx) error {
	var req dto.UpsertMerchantProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	req.Slug = strings.TrimSpace(strings.ToLower(req.Slug))
	if req.Slug == "" || req.DisplayName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "slug and display_name are required"})
	}

	userID := middleware.GetUserID(c)
	m := &models.Merchant{
		UserID:      userID,
		Slug:        req.Slug,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		CountryCode: req.CountryCode,
		AvatarURL:   req.AvatarURL,
		IsPublic:    req.IsPublic,
	}
	if err := h.directory.UpsertMyMerchantProfile(c.Context(), m); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "slug is already taken"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: m})
}

// GetMyMerchantListings returns the caller's listings in any status.
// GET /me/merchant/listings
func (h *MerchantHandler) GetMyMerchantListings(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	listings, err := h.directory.GetMyListings(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: listings})
}
