package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/config"
	"github.com/sponsorconnect/backend/internal/http/dto"
	"github.com/sponsorconnect/backend/internal/media"
	"github.com/sponsorconnect/backend/internal/middleware"
	"github.com/sponsorconnect/backend/internal/models"
	"github.com/sponsorconnect/backend/internal/services"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
	uploader        media.Uploader
	cfg             *config.Config
	log             *zap.Logger
}

// NewCampaignHandler builds the handler. uploader may be nil when no bucket is
// configured; banner uploads then answer 503.
func NewCampaignHandler(campaignService *services.CampaignService, uploader media.Uploader, cfg *config.Config, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, uploader: uploader, cfg: cfg, log: log}
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CampaignRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	campaign := req.ToModel()
	if err := h.campaignService.Create(c.Context(), middleware.GetIdentity(c), campaign); err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, campaign)
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	campaign, err := h.campaignService.Get(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, campaign)
}

// ListCampaigns lists the calling brand's campaigns.
func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	page, err := h.campaignService.ListOwned(c.Context(), middleware.GetIdentity(c), listParams(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, page)
}

// ListOpenCampaigns lists every active campaign for creators to browse.
func (h *CampaignHandler) ListOpenCampaigns(c *fiber.Ctx) error {
	page, err := h.campaignService.ListActive(c.Context(), listParams(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, page)
}

func (h *CampaignHandler) UpdateCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req dto.CampaignRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	campaign := req.ToModel()
	if err := h.campaignService.Update(c.Context(), middleware.GetIdentity(c), id, campaign); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, campaign)
}

func (h *CampaignHandler) DeleteCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.campaignService.Delete(c.Context(), middleware.GetIdentity(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, nil)
}

type campaignAction func(ctx context.Context, brand models.Identity, id uuid.UUID) (*models.Campaign, error)

func (h *CampaignHandler) runAction(c *fiber.Ctx, action campaignAction) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	campaign, err := action(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, campaign)
}

func (h *CampaignHandler) PublishCampaign(c *fiber.Ctx) error {
	return h.runAction(c, h.campaignService.Publish)
}

func (h *CampaignHandler) CompleteCampaign(c *fiber.Ctx) error {
	return h.runAction(c, h.campaignService.Complete)
}

func (h *CampaignHandler) CancelCampaign(c *fiber.Ctx) error {
	return h.runAction(c, h.campaignService.Cancel)
}

func (h *CampaignHandler) GetActivity(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	logs, err := h.campaignService.Activity(c.Context(), middleware.GetIdentity(c), id, limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, logs)
}

// UploadBanner accepts a multipart "banner" file, stores it and points the
// campaign at it.
func (h *CampaignHandler) UploadBanner(c *fiber.Ctx) error {
	if h.uploader == nil {
		return respondError(c, h.log, apperrors.Wrap(apperrors.ErrUnavailable, "media storage is not configured"))
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	brand := middleware.GetIdentity(c)
	if err := h.campaignService.CheckEditable(c.Context(), brand, id); err != nil {
		return respondError(c, h.log, err)
	}

	fh, err := c.FormFile("banner")
	if err != nil {
		return badRequest(c, "banner file is required")
	}
	contentType := fh.Header.Get(fiber.HeaderContentType)
	ext, err := media.CheckImage(contentType, fh.Size, h.cfg.MaxBannerBytes)
	if err != nil {
		return respondError(c, h.log, err)
	}

	file, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Context(), media.BannerKey(id, ext), file, contentType)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if _, err := h.campaignService.SetBanner(c.Context(), brand, id, url); err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, dto.BannerResponse{URL: url})
}
