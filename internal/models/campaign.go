package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/followers"
)

type TargetAudience struct {
	Location  string `json:"location"`
	AgeGroup  string `json:"ageGroup"`
	Gender    string `json:"gender"`
	Interests string `json:"interests"`
}

type MinRequirements struct {
	FollowersCount followers.Count `json:"followersCount"`
	EngagementRate string          `json:"engagementRate"`
	ContentStyle   string          `json:"contentStyle"`
	Languages      []string        `json:"languages"`
}

type Campaign struct {
	ID           uuid.UUID `json:"id"`
	BrandID      uuid.UUID `json:"brandId"`
	BrandName    string    `json:"brandName"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	StartDate    string    `json:"startDate"` // YYYY-MM-DD
	EndDate      string    `json:"endDate"`   // YYYY-MM-DD
	CampaignType string    `json:"campaignType"`

	TargetAudience         TargetAudience  `json:"targetAudience"`
	Platforms              []string        `json:"platforms"`
	MinRequirements        MinRequirements `json:"minRequirements"`
	NicheMatch             bool            `json:"nicheMatch"`
	GeographicRestrictions string          `json:"geographicRestrictions"`

	ContentFormat     []string `json:"contentFormat"`
	NumberOfPosts     int      `json:"numberOfPosts"`
	ContentGuidelines string   `json:"contentGuidelines"`
	ApprovalRequired  bool     `json:"approvalRequired"`

	CompensationType string `json:"compensationType"`
	PaymentAmount    string `json:"paymentAmount"`
	ProductDetails   string `json:"productDetails"`

	BannerImageURL string `json:"bannerImageUrl"`
	ReferenceLinks string `json:"referenceLinks"`

	Status     string    `json:"status"`
	Applicants int       `json:"applicants"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Plain-text projection of Description used for search.
	DescriptionText string `json:"-"`
}

// Normalize de-duplicates the set-valued fields and replaces nil sets with empty ones.
func (c *Campaign) Normalize() {
	c.Platforms = UniqueStrings(c.Platforms)
	c.ContentFormat = UniqueStrings(c.ContentFormat)
	c.MinRequirements.Languages = UniqueStrings(c.MinRequirements.Languages)
}

func (c Campaign) SearchFields() []string {
	desc := c.DescriptionText
	if desc == "" {
		desc = c.Description
	}
	return []string{c.Title, desc, c.Category}
}

func (c Campaign) CurrentStatus() string { return c.Status }

// Editable reports whether the brand may still change campaign content.
func (c Campaign) Editable() bool {
	return c.Status == CampaignStatusDraft || c.Status == CampaignStatusActive
}

// UniqueStrings trims, drops empties and removes duplicates, keeping first-seen order.
func UniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
