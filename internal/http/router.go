package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sponsorconnect/backend/internal/auth"
	"github.com/sponsorconnect/backend/internal/config"
	"github.com/sponsorconnect/backend/internal/http/handlers"
	"github.com/sponsorconnect/backend/internal/metrics"
	"github.com/sponsorconnect/backend/internal/middleware"
	"github.com/sponsorconnect/backend/internal/rbac"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	sessions auth.SessionStore,
	m *metrics.Metrics,
	authHandler *handlers.AuthHandler,
	campaignHandler *handlers.CampaignHandler,
	applicationHandler *handlers.ApplicationHandler,
	draftHandler *handlers.DraftHandler,
	creatorHandler *handlers.CreatorHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	api := app.Group("/api")

	// Public endpoints are limited per IP, protected ones per account.
	limit := middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute)

	// Auth (public)
	api.Post("/auth/signup", limit, authHandler.Signup)
	api.Post("/auth/login", limit, authHandler.Login)

	// Meta (public, no auth required)
	metaHandler := handlers.NewMetaHandler()
	api.Get("/meta/categories", limit, metaHandler.GetCategories)
	api.Get("/meta/languages", limit, metaHandler.GetLanguages)
	api.Get("/meta/campaign-options", limit, metaHandler.GetCampaignOptions)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, sessions, log), limit)

	manage := middleware.RequirePermission(rbac.PermManageCampaign)
	review := middleware.RequirePermission(rbac.PermReviewApplication)
	editDraft := middleware.RequirePermission(rbac.PermEditDraft)
	browse := middleware.RequirePermission(rbac.PermBrowseCampaigns)
	apply := middleware.RequirePermission(rbac.PermApply)

	// Account
	protected.Get("/auth/profile", authHandler.Profile)
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Post("/profile", authHandler.SaveProfile)

	// Draft routes go first so "draft" is not taken for a campaign id
	protected.Get("/campaigns/draft", editDraft, draftHandler.GetDraft)
	protected.Put("/campaigns/draft", editDraft, draftHandler.PutDraft)
	protected.Patch("/campaigns/draft", editDraft, draftHandler.PatchDraft)
	protected.Delete("/campaigns/draft", editDraft, draftHandler.DeleteDraft)

	// Campaigns
	protected.Get("/campaigns/all", browse, campaignHandler.ListOpenCampaigns)
	protected.Get("/campaigns", manage, campaignHandler.ListCampaigns)
	protected.Post("/campaigns", manage, campaignHandler.CreateCampaign)
	protected.Get("/campaigns/:id", browse, campaignHandler.GetCampaign)
	protected.Put("/campaigns/:id", manage, campaignHandler.UpdateCampaign)
	protected.Delete("/campaigns/:id", manage, campaignHandler.DeleteCampaign)
	protected.Put("/campaigns/:id/publish", manage, campaignHandler.PublishCampaign)
	protected.Put("/campaigns/:id/complete", manage, campaignHandler.CompleteCampaign)
	protected.Put("/campaigns/:id/cancel", manage, campaignHandler.CancelCampaign)
	protected.Get("/campaigns/:id/activity", manage, campaignHandler.GetActivity)
	protected.Post("/campaigns/:id/banner", middleware.RequirePermission(rbac.PermUploadMedia), campaignHandler.UploadBanner)

	// Applications
	protected.Get("/campaigns/:id/applications", review, applicationHandler.ListForCampaign)
	protected.Get("/campaigns/:id/approved", review, applicationHandler.ListApproved)
	protected.Post("/campaigns/:id/apply", apply, applicationHandler.ApplyToCampaign)
	protected.Get("/applications", applicationHandler.List)
	protected.Get("/applications/brand", review, applicationHandler.ListForBrand)
	protected.Get("/applications/creator", apply, applicationHandler.ListForCreator)
	protected.Post("/applications", apply, applicationHandler.Apply)
	protected.Patch("/applications/:id/status", review, applicationHandler.UpdateStatus)
	protected.Put("/applications/:id/status", review, applicationHandler.UpdateStatus)

	// Creator profiles; "me" is registered before ":id"
	ownProfile := middleware.RequirePermission(rbac.PermEditOwnProfile)
	protected.Get("/creators/me/profile", ownProfile, creatorHandler.GetOwnProfile)
	protected.Post("/creators/me/profile", ownProfile, creatorHandler.SaveProfile)
	protected.Get("/creators/:id/profile", middleware.RequirePermission(rbac.PermViewCreators), creatorHandler.GetProfile)

	// WebSocket
	app.Use("/ws", wsHub.UpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
