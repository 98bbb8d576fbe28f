package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sponsorconnect/backend/internal/http/dto"
	"github.com/sponsorconnect/backend/internal/middleware"
	"github.com/sponsorconnect/backend/internal/services"
	"go.uber.org/zap"
)

type CreatorHandler struct {
	profileService *services.CreatorProfileService
	log            *zap.Logger
}

func NewCreatorHandler(profileService *services.CreatorProfileService, log *zap.Logger) *CreatorHandler {
	return &CreatorHandler{profileService: profileService, log: log}
}

// SaveProfile handles POST /api/creators/me/profile.
func (h *CreatorHandler) SaveProfile(c *fiber.Ctx) error {
	var req dto.CreatorProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	profile, err := h.profileService.Save(c.Context(), middleware.GetIdentity(c), services.CreatorProfileInput{
		Platform:      req.Platform,
		Handle:        req.Handle,
		ChannelURL:    req.ChannelURL,
		Followers:     req.Followers,
		Views:         int64(req.Views),
		AvgEngagement: req.AvgEngagement,
		TopTopics:     req.TopTopics,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, profile)
}

func (h *CreatorHandler) GetOwnProfile(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	profiles, err := h.profileService.Profiles(c.Context(), id, id.UserID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, profiles)
}

// GetProfile handles GET /api/creators/:id/profile for brands.
func (h *CreatorHandler) GetProfile(c *fiber.Ctx) error {
	creatorID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	profiles, err := h.profileService.Profiles(c.Context(), middleware.GetIdentity(c), creatorID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, profiles)
}
