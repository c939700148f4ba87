package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stellar-p2p/backend/internal/http/dto"
	"github.com/stellar-p2p/backend/internal/middleware"
	"github.com/stellar-p2p/backend/internal/repositories"
	"github.com/stellar-p2p/backend/internal/services"
	"go.uber.org/zap"
)

type ListingHandler struct {
	listings *services.ListingService
	log      *zap.Logger
}

func NewListingHandler(listings *services.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, log: log}
}

// CreateListing posts a new buy/sell offer.
// POST /listings
func (h *ListingHandler) CreateListing(c *fiber.Ctx) error {
	var req services.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	userID := middleware.GetUserID(c)
	l, err := h.listings.Create(c.Context(), userID, nil, req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: l})
}

// ListListings is the public marketplace feed, filterable by side, token and
// status.
// GET /listings
func (h *ListingHandler) ListListings(c *fiber.Ctx) error {
	f := repositories.ListingFilter{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("type"); v != "" {
		f.Type = &v
	}
	if v := c.Query("token"); v != "" {
		f.Token = &v
	}
	if v := c.Query("status"); v != "" {
		f.Status = &v
	}

	listings, err := h.listings.List(c.Context(), f)
	if err != nil {
		h.log.Error("failed to list listings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: listings})
}

// MyListings returns the caller's own listings in any status.
// GET /listings/my
func (h *ListingHandler) MyListings(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	listings, err := h.listings.List(c.Context(), repositories.ListingFilter{
		OwnerUserID: &userID,
		Limit:       c.QueryInt("limit", 50),
		Offset:      c.QueryInt("offset", 0),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: listings})
}

// GetListing returns one listing.
// GET /listings/:id
func (h *ListingHandler) GetListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid listing id"})
	}

	l, err := h.listings.Get(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "listing not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: l})
}

// UpdateListing edits amounts, rate and terms.
// PUT /listings/:id
func (h *ListingHandler) UpdateListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid listing id"})
	}

	var req services.UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	userID := middleware.GetUserID(c)
	l, err := h.listings.Update(c.Context(), userID, id, req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: l})
}

// ChangeStatus moves the listing along the status machine.
// POST /listings/:id/status
func (h *ListingHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid listing id"})
	}

	var req dto.ChangeListingStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "status is required"})
	}

	userID := middleware.GetUserID(c)
	l, err := h.listings.ChangeStatus(c.Context(), userID, id, req.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: l})
}

// GetStats aggregates active listings per token.
// GET /listings/stats
func (h *ListingHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.listings.Stats(c.Context())
	if err != nil {
		h.log.Error("failed to compute listing stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stats})
}
