package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sponsorconnect/backend/internal/config"
	"github.com/sponsorconnect/backend/internal/db"
	"github.com/sponsorconnect/backend/internal/events"
	"github.com/sponsorconnect/backend/internal/jobs"
	"github.com/sponsorconnect/backend/internal/metrics"
	"github.com/sponsorconnect/backend/internal/repositories"
	"github.com/sponsorconnect/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)
	if cfg.UseMemoryStorage() {
		log.Fatal("worker needs STORAGE_DRIVER=postgres; the API runs maintenance itself in memory mode")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	// Repos
	campaignRepo := repositories.NewCampaignRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	m := metrics.New()
	ln, err := net.Listen("tcp", cfg.WorkerMetricsAddr)
	if err != nil {
		log.Fatal("failed to listen for metrics", zap.String("addr", cfg.WorkerMetricsAddr), zap.Error(err))
	}
	go func() {
		if err := m.Serve(ctx, ln); err != nil {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	// Services; the worker never touches drafts.
	publisher := events.NewRedisBus(rdb, log)
	campaignService := services.NewCampaignService(campaignRepo, auditRepo, nil, publisher, m, cfg.DefaultPageSize, log)

	log.Info("worker started",
		zap.Duration("reconcile_interval", cfg.ReconcileInterval),
		zap.Duration("expire_interval", cfg.ExpireInterval),
		zap.String("metrics_addr", ln.Addr().String()),
	)
	jobs.NewRunner(campaignService, cfg.ReconcileInterval, cfg.ExpireInterval, log).Run(ctx)
	log.Info("shutting down worker")
}
