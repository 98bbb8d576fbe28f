package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sponsorconnect/backend/internal/drafts"
	"github.com/sponsorconnect/backend/internal/http/dto"
	"github.com/sponsorconnect/backend/internal/middleware"
	"go.uber.org/zap"
)

// DraftHandler serves the brand's in-progress campaign form. Writes are
// coalesced by the autosaver; ?flush=true forces an immediate save.
type DraftHandler struct {
	autosaver *drafts.Autosaver
	log       *zap.Logger
}

func NewDraftHandler(autosaver *drafts.Autosaver, log *zap.Logger) *DraftHandler {
	return &DraftHandler{autosaver: autosaver, log: log}
}

func (h *DraftHandler) GetDraft(c *fiber.Ctx) error {
	brand := middleware.GetIdentity(c)
	form, err := h.autosaver.Load(c.Context(), brand.UserID, brand.Name)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, form)
}

func (h *DraftHandler) PutDraft(c *fiber.Ctx) error {
	var form drafts.CampaignForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	brand := middleware.GetIdentity(c)
	form.Normalize()
	h.autosaver.Touch(brand.UserID, form)
	return h.respond(c, form)
}

func (h *DraftHandler) PatchDraft(c *fiber.Ctx) error {
	var patch drafts.Patch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "invalid request body")
	}
	brand := middleware.GetIdentity(c)
	form, err := h.autosaver.Patch(c.Context(), brand.UserID, brand.Name, patch)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return h.respond(c, form)
}

func (h *DraftHandler) respond(c *fiber.Ctx, form drafts.CampaignForm) error {
	if !c.QueryBool("flush") {
		return c.Status(fiber.StatusAccepted).JSON(dto.SuccessResponse{OK: true, Data: dto.DraftSaveResponse{Form: form}})
	}
	saved, err := h.autosaver.Flush(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, dto.DraftSaveResponse{Saved: saved, Form: form})
}

func (h *DraftHandler) DeleteDraft(c *fiber.Ctx) error {
	if err := h.autosaver.Discard(c.Context(), middleware.GetUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, nil)
}
