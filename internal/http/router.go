package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/stellar-p2p/backend/internal/config"
	"github.com/stellar-p2p/backend/internal/http/handlers"
	"github.com/stellar-p2p/backend/internal/middleware"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	walletHandler *handlers.WalletHandler,
	tradeHandler *handlers.TradeHandler,
	listingHandler *handlers.ListingHandler,
	merchantHandler *handlers.MerchantHandler,
	accessHandler *handlers.AccessHandler,
	waitlistHandler *handlers.WaitlistHandler,
	passkeyHandler *handlers.PasskeyHandler,
	metaHandler *handlers.MetaHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/signup", authHandler.SignUp)
	api.Post("/auth/signin", authHandler.SignIn)
	api.Post("/auth/guard/evaluate", authHandler.EvaluateGuard)
	api.Post("/auth/guard/reset", authHandler.ResetGuard)

	// Rate-limited public endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Meta (public, no auth required)
	api.Get("/meta/tokens", metaHandler.GetTokens)
	api.Get("/meta/currencies", metaHandler.GetCurrencies)
	api.Get("/meta/payment-methods", metaHandler.GetPaymentMethods)

	// Early access gate + waitlist (public)
	api.Post("/access/redeem", accessHandler.Redeem)
	api.Post("/waitlist", waitlistHandler.Join)
	api.Post("/waitlist/request-otp", waitlistHandler.RequestOTP)
	api.Post("/waitlist/verify", waitlistHandler.VerifyOTP)
	api.Get("/waitlist/status", waitlistHandler.Status)

	// Public marketplace
	api.Get("/listings", listingHandler.ListListings)
	api.Get("/listings/stats", listingHandler.GetStats)
	api.Get("/merchants", merchantHandler.ListMerchants)
	api.Get("/merchants/:slug", merchantHandler.GetMerchant)
	api.Get("/merchants/:slug/charts", merchantHandler.GetMerchantCharts)
	api.Get("/merchants/:slug/listings", merchantHandler.GetMerchantListings)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Put("/me", userHandler.UpdateMe)
	protected.Post("/me/dev-confirm", userHandler.DevConfirmEmail)

	// Wallet (challenge + proof)
	protected.Post("/me/wallet/challenge", walletHandler.IssueChallenge)
	protected.Post("/me/wallet/connect", walletHandler.ConnectWallet)
	protected.Delete("/me/wallet", walletHandler.DisconnectWallet)
	protected.Get("/me/wallet", walletHandler.GetWallet)

	// Merchant console
	protected.Get("/me/merchant", merchantHandler.GetMyMerchant)
	protected.Put("/me/merchant", merchantHandler.UpsertMyMerchant)
	protected.Get("/me/merchant/listings", merchantHandler.GetMyMerchantListings)

	// Listings (owner operations)
	protected.Post("/listings", listingHandler.CreateListing)
	protected.Get("/listings/my", listingHandler.MyListings)
	protected.Get("/listings/:id", listingHandler.GetListing)
	protected.Put("/listings/:id", listingHandler.UpdateListing)
	protected.Post("/listings/:id/status", listingHandler.ChangeStatus)

	// Escrows (guarded lifecycle actions)
	protected.Get("/escrows", tradeHandler.ListMyEscrows)
	protected.Get("/escrows/:engagementId", tradeHandler.GetEscrow)
	protected.Post("/escrows/:engagementId/report-payment", tradeHandler.ReportPayment)
	protected.Post("/escrows/:engagementId/confirm-payment", tradeHandler.ConfirmPayment)
	protected.Post("/escrows/:engagementId/deposit", tradeHandler.DepositFunds)
	protected.Post("/escrows/:engagementId/dispute", tradeHandler.Dispute)
	protected.Post("/escrows/:engagementId/release", tradeHandler.ReleaseFunds)

	// Passkey relay proxy
	protected.Post("/passkey/register", passkeyHandler.Register)
	protected.Post("/passkey/authenticate", passkeyHandler.Authenticate)
	protected.Post("/passkey/submit", passkeyHandler.Submit)
	protected.Get("/passkey/credits", passkeyHandler.Credits)

	// Mock surface for frontend development, absent unless MOCK_MODE is on
	if cfg.MockMode {
		mockHandler := handlers.NewMockHandler()
		mock := app.Group("/api/mock")
		mock.Get("/escrows", mockHandler.ListEscrows)
		mock.Get("/escrows/:engagementId", mockHandler.GetEscrow)
	}

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
