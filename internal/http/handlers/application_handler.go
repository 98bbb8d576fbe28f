package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/http/dto"
	"github.com/sponsorconnect/backend/internal/middleware"
	"github.com/sponsorconnect/backend/internal/services"
	"go.uber.org/zap"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
	log                *zap.Logger
}

func NewApplicationHandler(applicationService *services.ApplicationService, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService, log: log}
}

func (h *ApplicationHandler) apply(c *fiber.Ctx, req dto.ApplyRequest) error {
	if err := dto.Validate(req); err != nil {
		return respondError(c, h.log, err)
	}
	application, err := h.applicationService.Apply(c.Context(), middleware.GetIdentity(c), services.ApplyInput{
		CampaignID: uuid.MustParse(req.CampaignID),
		Platform:   req.Platform,
		Followers:  req.Followers,
		Niche:      req.Niche,
		Message:    req.Message,
		Metrics:    req.Metrics,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, application)
}

// Apply handles POST /api/applications with the campaign id in the body.
func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	var req dto.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	return h.apply(c, req)
}

// ApplyToCampaign handles POST /api/campaigns/:id/apply.
func (h *ApplicationHandler) ApplyToCampaign(c *fiber.Ctx) error {
	var req dto.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.CampaignID = c.Params("id")
	return h.apply(c, req)
}

func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req dto.ApplicationStatusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	application, err := h.applicationService.UpdateStatus(c.Context(), middleware.GetIdentity(c), id, req.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, application)
}

func (h *ApplicationHandler) ListForCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	page, err := h.applicationService.ListForCampaign(c.Context(), middleware.GetIdentity(c), id, listParams(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, page)
}

// ListApproved is the approved-creators view of one campaign.
func (h *ApplicationHandler) ListApproved(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	page, err := h.applicationService.Approved(c.Context(), middleware.GetIdentity(c), id, listParams(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, page)
}

func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	page, err := h.applicationService.List(c.Context(), middleware.GetIdentity(c), listParams(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, page)
}

func (h *ApplicationHandler) ListForBrand(c *fiber.Ctx) error {
	page, err := h.applicationService.ListForBrand(c.Context(), middleware.GetIdentity(c), listParams(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, page)
}

func (h *ApplicationHandler) ListForCreator(c *fiber.Ctx) error {
	page, err := h.applicationService.ListForCreator(c.Context(), middleware.GetIdentity(c), listParams(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, page)
}
