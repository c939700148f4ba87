package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/auth"
	"github.com/stellar-p2p/backend/internal/config"
	"github.com/stellar-p2p/backend/internal/db"
	"github.com/stellar-p2p/backend/internal/escrow"
	"github.com/stellar-p2p/backend/internal/events"
	apphttp "github.com/stellar-p2p/backend/internal/http"
	"github.com/stellar-p2p/backend/internal/http/handlers"
	"github.com/stellar-p2p/backend/internal/merchantdata"
	"github.com/stellar-p2p/backend/internal/passkey"
	"github.com/stellar-p2p/backend/internal/repositories"
	"github.com/stellar-p2p/backend/internal/services"
	"github.com/stellar-p2p/backend/internal/stellar"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	walletRepo := repositories.NewWalletRepo(pool)
	listingRepo := repositories.NewListingRepo(pool)
	merchantRepo := repositories.NewMerchantRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	accessRepo := repositories.NewAccessRepo(pool)
	waitlistRepo := repositories.NewWaitlistRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Trustlines
	assets := stellar.NewRegistry(stellar.DefaultAssets())

	// Escrow service
	escrowClient := escrow.NewClient(cfg.EscrowAPIBaseURL, cfg.EscrowAPIKey, log)
	coordinator := escrow.NewCoordinator(escrowClient, escrowRepo, publisher, log)

	// Merchant directory backend
	var directory merchantdata.Directory
	if cfg.MerchantBackend == "fixture" {
		directory = merchantdata.NewFixtureDirectory()
		log.Info("merchant directory using fixture backend")
	} else {
		directory = merchantdata.NewPostgresDirectory(merchantRepo, listingRepo, userRepo)
	}

	// Services
	identityService := services.NewIdentityService(userRepo, auditRepo, cfg, log)
	walletService := services.NewWalletService(walletRepo, userRepo, auditRepo, cfg, log)
	listingService := services.NewListingService(listingRepo, auditRepo, assets, publisher, log)
	accessService := services.NewAccessService(accessRepo, log)
	emailClient := services.NewEmailClient(cfg.EmailEndpoint, cfg.EmailAPIKey, cfg.EmailFrom, log)
	waitlistService := services.NewWaitlistService(waitlistRepo, emailClient, cfg.OTPTTL, log)
	tradeService := services.NewTradeService(coordinator, escrowClient, escrowRepo, walletRepo, auditRepo, log)
	passkeyClient := passkey.NewClient(cfg.PasskeyRelayURL, cfg.PasskeyRelayKey, log)

	// Route guard
	guard := auth.NewGuard(cfg.GuardProtectedPrefixes, cfg.GuardAuthPrefixes, cfg.GuardAuthEntry, cfg.GuardLanding)

	// Handlers
	authHandler := handlers.NewAuthHandler(identityService, guard, log)
	userHandler := handlers.NewUserHandler(identityService, log)
	walletHandler := handlers.NewWalletHandler(walletService, log)
	tradeHandler := handlers.NewTradeHandler(tradeService, log)
	listingHandler := handlers.NewListingHandler(listingService, log)
	merchantHandler := handlers.NewMerchantHandler(directory, log)
	accessHandler := handlers.NewAccessHandler(accessService, log)
	waitlistHandler := handlers.NewWaitlistHandler(waitlistService, log)
	passkeyHandler := handlers.NewPasskeyHandler(passkeyClient, log)
	metaHandler := handlers.NewMetaHandler(assets)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb,
		authHandler, userHandler, walletHandler, tradeHandler, listingHandler,
		merchantHandler, accessHandler, waitlistHandler, passkeyHandler, metaHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
