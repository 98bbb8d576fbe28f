package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sponsorconnect/backend/internal/http/dto"
)

// MetaHandler serves the option lists used by the campaign form and filters.
type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

type MetaOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func options(labels ...string) []MetaOption {
	out := make([]MetaOption, 0, len(labels))
	for _, l := range labels {
		out = append(out, MetaOption{ID: slug(l), Label: l})
	}
	return out
}

func slug(label string) string {
	b := make([]byte, 0, len(label))
	dash := false
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b = append(b, byte(r))
			dash = false
		case r >= 'A' && r <= 'Z':
			b = append(b, byte(r-'A'+'a'))
			dash = false
		default:
			if !dash && len(b) > 0 {
				b = append(b, '-')
				dash = true
			}
		}
	}
	if dash {
		b = b[:len(b)-1]
	}
	return string(b)
}

var (
	predefinedCategories = options(
		"Tech", "Fashion", "Gaming", "Fitness", "Food", "Travel",
		"Beauty", "Lifestyle", "Business", "Education", "Entertainment",
	)
	predefinedCampaignTypes = options(
		"Product Review", "Affiliate Partnership", "Event Coverage",
		"Brand Awareness", "Social Media Shoutout", "Content Collaboration",
	)
	predefinedPlatforms = options(
		"YouTube", "Instagram", "TikTok", "Twitch", "Blog",
		"Twitter", "LinkedIn", "Facebook", "Pinterest",
	)
	predefinedContentFormats = options(
		"Video", "Reel", "Story", "Blog Post", "Livestream",
		"Photo Post", "Tweet", "Podcast",
	)
	predefinedLanguages = options(
		"English", "Spanish", "French", "German", "Italian",
		"Portuguese", "Japanese", "Korean", "Chinese",
	)
	predefinedCompensationTypes = options(
		"Fixed Payment", "Commission/Affiliate", "Free Product/Service", "Event Invitation",
	)
)

func (h *MetaHandler) GetCategories(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: predefinedCategories})
}

func (h *MetaHandler) GetLanguages(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: predefinedLanguages})
}

// GetCampaignOptions returns every list the campaign form needs in one call.
func (h *MetaHandler) GetCampaignOptions(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"categories":        predefinedCategories,
		"campaignTypes":     predefinedCampaignTypes,
		"platforms":         predefinedPlatforms,
		"contentFormats":    predefinedContentFormats,
		"languages":         predefinedLanguages,
		"compensationTypes": predefinedCompensationTypes,
	}})
}
