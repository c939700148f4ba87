package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stellar-p2p/backend/internal/config"
	"github.com/stellar-p2p/backend/internal/db"
	"github.com/stellar-p2p/backend/internal/escrow"
	"github.com/stellar-p2p/backend/internal/events"
	"github.com/stellar-p2p/backend/internal/repositories"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	escrowRepo := repositories.NewEscrowRepo(pool)
	waitlistRepo := repositories.NewWaitlistRepo(pool)
	publisher := events.NewRedisPublisher(rdb, log)
	escrowClient := escrow.NewClient(cfg.EscrowAPIBaseURL, cfg.EscrowAPIKey, log)

	log.Info("worker started",
		zap.Duration("escrow_sync_interval", cfg.EscrowSyncInterval),
		zap.Duration("expiry_sweep_interval", cfg.ExpirySweepInterval),
	)

	syncTicker := time.NewTicker(cfg.EscrowSyncInterval)
	sweepTicker := time.NewTicker(cfg.ExpirySweepInterval)
	defer syncTicker.Stop()
	defer sweepTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-syncTicker.C:
			runEscrowSync(ctx, escrowRepo, escrowClient, publisher, log)
		case <-sweepTicker.C:
			runExpirySweep(ctx, waitlistRepo, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// runEscrowSync re-fetches every open escrow from the hosted service and
// overwrites the local mirror. This is the convergence path for mirrors that
// went stale after a failed save or an out-of-band state change.
func runEscrowSync(ctx context.Context, escrowRepo *repositories.EscrowRepo, client *escrow.Client, publisher events.Publisher, log *zap.Logger) {
	ids, err := escrowRepo.ListOpenEngagementIDs(ctx)
	if err != nil {
		log.Error("failed to list open escrows", zap.Error(err))
		return
	}

	for _, id := range ids {
		remote, err := client.GetEscrow(ctx, id)
		if err != nil {
			log.Warn("failed to fetch escrow", zap.String("engagement_id", id), zap.Error(err))
			continue
		}
		e, err := remote.ToModel()
		if err != nil {
			log.Warn("failed to map escrow", zap.String("engagement_id", id), zap.Error(err))
			continue
		}

		prev, err := escrowRepo.GetByEngagementID(ctx, id)
		if err != nil {
			log.Warn("failed to load mirror", zap.String("engagement_id", id), zap.Error(err))
			continue
		}
		if prev != nil {
			e.ListingID = prev.ListingID
		}

		if err := escrowRepo.Save(ctx, e); err != nil {
			log.Error("failed to save mirror", zap.String("engagement_id", id), zap.Error(err))
			continue
		}

		changed := prev == nil ||
			prev.Balance != e.Balance ||
			prev.Flags != e.Flags ||
			prev.Milestone().Status != e.Milestone().Status
		if changed {
			log.Info("escrow mirror updated",
				zap.String("engagement_id", id),
				zap.Int64("balance", e.Balance),
			)
			_ = publisher.Publish(ctx, events.StreamEscrow, events.Event{
				Type: events.EventEscrowStatusChanged,
				Payload: map[string]any{
					"engagement_id": id,
					"status":        e.Milestone().Status,
					"balance":       e.Balance,
				},
			})
		}
	}
}

// runExpirySweep clears verification codes past their window.
func runExpirySweep(ctx context.Context, waitlistRepo *repositories.WaitlistRepo, log *zap.Logger) {
	n, err := waitlistRepo.ClearExpiredOTPs(ctx)
	if err != nil {
		log.Error("failed to clear expired OTPs", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("expired OTPs cleared", zap.Int64("count", n))
	}
}
