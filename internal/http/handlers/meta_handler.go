package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/http/dto"
	"github.com/stellar-p2p/backend/internal/stellar"
)

type MetaHandler struct {
	assets *stellar.Registry
}

func NewMetaHandler(assets *stellar.Registry) *MetaHandler {
	return &MetaHandler{assets: assets}
}

type MetaCurrency struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type MetaPaymentMethod struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var predefinedCurrencies = []MetaCurrency{
	{ID: "USD", Label: "US Dollar"},
	{ID: "EUR", Label: "Euro"},
	{ID: "GBP", Label: "British Pound"},
	{ID: "NGN", Label: "Nigerian Naira"},
	{ID: "KES", Label: "Kenyan Shilling"},
	{ID: "GHS", Label: "Ghanaian Cedi"},
	{ID: "BRL", Label: "Brazilian Real"},
	{ID: "ARS", Label: "Argentine Peso"},
	{ID: "MXN", Label: "Mexican Peso"},
	{ID: "INR", Label: "Indian Rupee"},
	{ID: "PHP", Label: "Philippine Peso"},
	{ID: "TRY", Label: "Turkish Lira"},
}

var predefinedPaymentMethods = []MetaPaymentMethod{
	{ID: "bank_transfer", Label: "Bank Transfer"},
	{ID: "sepa_instant", Label: "SEPA Instant"},
	{ID: "mobile_money", Label: "Mobile Money"},
	{ID: "wise", Label: "Wise"},
	{ID: "revolut", Label: "Revolut"},
	{ID: "pix", Label: "Pix"},
	{ID: "upi", Label: "UPI"},
	{ID: "cash_in_person", Label: "Cash in Person"},
	{ID: "other", Label: "Other"},
}

// GetTokens lists the tradable trustline assets.
// GET /meta/tokens
func (h *MetaHandler) GetTokens(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: h.assets.Assets()})
}

// GetCurrencies lists supported fiat currencies.
// GET /meta/currencies
func (h *MetaHandler) GetCurrencies(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: predefinedCurrencies})
}

// GetPaymentMethods lists supported fiat rails.
// GET /meta/payment-methods
func (h *MetaHandler) GetPaymentMethods(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: predefinedPaymentMethods})
}
