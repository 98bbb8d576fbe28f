package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sponsorconnect/backend/internal/auth"
	"github.com/sponsorconnect/backend/internal/config"
	"github.com/sponsorconnect/backend/internal/db"
	"github.com/sponsorconnect/backend/internal/drafts"
	"github.com/sponsorconnect/backend/internal/events"
	apphttp "github.com/sponsorconnect/backend/internal/http"
	"github.com/sponsorconnect/backend/internal/http/dto"
	"github.com/sponsorconnect/backend/internal/http/handlers"
	"github.com/sponsorconnect/backend/internal/jobs"
	"github.com/sponsorconnect/backend/internal/media"
	"github.com/sponsorconnect/backend/internal/metrics"
	"github.com/sponsorconnect/backend/internal/middleware"
	"github.com/sponsorconnect/backend/internal/repositories"
	"github.com/sponsorconnect/backend/internal/repositories/memstore"
	"github.com/sponsorconnect/backend/internal/services"
	"go.uber.org/zap"
)

// backend is everything that differs between the postgres and memory drivers.
type backend struct {
	rdb          *redis.Client
	campaigns    services.CampaignStore
	applications services.ApplicationStore
	accounts     services.AccountStore
	profiles     services.CreatorProfileStore
	audit        services.AuditLogger
	sessions     auth.SessionStore
	draftStore   drafts.Store
	publisher    events.Publisher
	subscriber   events.Subscriber
	close        func()
}

func openPostgres(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backend, error) {
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, pool, os.DirFS(cfg.MigrationsDir), log); err != nil {
		pool.Close()
		return nil, err
	}
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		pool.Close()
		return nil, err
	}
	bus := events.NewRedisBus(rdb, log)

	return &backend{
		rdb:          rdb,
		campaigns:    repositories.NewCampaignRepo(pool),
		applications: repositories.NewApplicationRepo(pool),
		accounts:     repositories.NewAccountRepo(pool),
		profiles:     repositories.NewCreatorProfileRepo(pool),
		audit:        repositories.NewAuditRepo(pool),
		sessions:     auth.NewRedisSessionStore(rdb),
		draftStore:   drafts.NewRedisStore(rdb, cfg.DraftTTL),
		publisher:    bus,
		subscriber:   bus,
		close: func() {
			_ = rdb.Close()
			pool.Close()
		},
	}, nil
}

func openMemory() *backend {
	store := memstore.New()
	bus := events.NewMemoryBus()
	return &backend{
		campaigns:    store.Campaigns(),
		applications: store.Applications(),
		accounts:     store.Accounts(),
		profiles:     store.CreatorProfiles(),
		audit:        store.Audit(),
		sessions:     auth.NewMemorySessionStore(),
		draftStore:   drafts.NewMemoryStore(),
		publisher:    bus,
		subscriber:   bus,
		close:        func() {},
	}
}

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		be  *backend
		err error
	)
	if cfg.UseMemoryStorage() {
		be = openMemory()
	} else if be, err = openPostgres(ctx, cfg, log); err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer be.close()

	m := metrics.New()

	// Draft autosave
	autosaver := drafts.NewAutosaver(be.draftStore, cfg.DraftDebounce, cfg.DraftInterval, log)
	autosaver.OnSave(func(trigger string) {
		m.DraftSaves.WithLabelValues(trigger).Inc()
	})
	autosaveDone := make(chan struct{})
	go func() {
		defer close(autosaveDone)
		autosaver.Run(ctx)
	}()

	// Services
	accountService := services.NewAccountService(be.accounts, be.sessions, autosaver, be.audit, cfg, log)
	campaignService := services.NewCampaignService(be.campaigns, be.audit, autosaver, be.publisher, m, cfg.DefaultPageSize, log)
	applicationService := services.NewApplicationService(be.applications, be.campaigns, be.accounts, be.profiles, be.audit, be.publisher, m, cfg.DefaultPageSize, log)
	profileService := services.NewCreatorProfileService(be.profiles, be.accounts, be.audit, log)

	// The memory driver cannot be shared with cmd/worker, so run maintenance here.
	if cfg.UseMemoryStorage() {
		go jobs.NewRunner(campaignService, cfg.ReconcileInterval, cfg.ExpireInterval, log).Run(ctx)
	}

	var uploader media.Uploader
	if cfg.MediaEnabled() {
		s3u, err := media.NewS3Uploader(ctx, cfg, log)
		if err != nil {
			log.Fatal("failed to configure media storage", zap.Error(err))
		}
		uploader = s3u
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(accountService, log)
	campaignHandler := handlers.NewCampaignHandler(campaignService, uploader, cfg, log)
	applicationHandler := handlers.NewApplicationHandler(applicationService, log)
	draftHandler := handlers.NewDraftHandler(autosaver, log)
	creatorHandler := handlers.NewCreatorHandler(profileService, log)
	wsHub := handlers.NewWSHub(cfg, be.sessions, be.subscriber, log)

	// Start WS hub
	if err := wsHub.Start(ctx); err != nil {
		log.Fatal("failed to subscribe to events", zap.Error(err))
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxBannerBytes) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			msg := err.Error()
			if code == fiber.StatusInternalServerError {
				msg = "internal error"
			}
			reqID, _ := c.Locals(middleware.CtxRequestID).(string)
			return c.Status(code).JSON(dto.ErrorResponse{Error: msg, RequestID: reqID})
		},
	})

	apphttp.SetupRouter(app, cfg, log, be.rdb, be.sessions, m, authHandler, campaignHandler, applicationHandler, draftHandler, creatorHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		_ = app.Shutdown()
		cancel()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr), zap.String("storage", cfg.StorageDriver))
	if err := app.Listen(addr); err != nil {
		log.Error("server error", zap.Error(err))
	}
	cancel()
	// Pending drafts are flushed on the way out.
	<-autosaveDone
}
