package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sponsorconnect/backend/internal/followers"
	"github.com/sponsorconnect/backend/internal/models"
)

// Auth

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	UserType string `json:"userType" validate:"required,oneof=brand creator influencer"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,max=120"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	UserType string `json:"userType" validate:"omitempty,oneof=brand creator influencer"`
}

// Campaigns

// Int accepts a JSON number, a numeric string or "" (zero). Form inputs send strings.
type Int int

func (n *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			*n = 0
			return nil
		}
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	*n = Int(v)
	return nil
}

type TargetAudience struct {
	Location  string `json:"location" validate:"max=200"`
	AgeGroup  string `json:"ageGroup" validate:"max=50"`
	Gender    string `json:"gender" validate:"max=50"`
	Interests string `json:"interests" validate:"max=500"`
}

type MinRequirements struct {
	FollowersCount followers.Count `json:"followersCount" validate:"gte=0"`
	EngagementRate string          `json:"engagementRate" validate:"max=20"`
	ContentStyle   string          `json:"contentStyle" validate:"max=200"`
	Languages      []string        `json:"languages" validate:"max=20,dive,max=40"`
}

type CampaignRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	BrandName    string `json:"brandName" validate:"max=120"`
	Description  string `json:"description" validate:"max=20000"`
	Category     string `json:"category" validate:"max=60"`
	StartDate    string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	CampaignType string `json:"campaignType" validate:"max=60"`

	TargetAudience         TargetAudience  `json:"targetAudience"`
	Platforms              []string        `json:"platforms" validate:"max=20,dive,max=40"`
	MinRequirements        MinRequirements `json:"minRequirements"`
	NicheMatch             bool            `json:"nicheMatch"`
	GeographicRestrictions string          `json:"geographicRestrictions" validate:"max=500"`

	ContentFormat     []string `json:"contentFormat" validate:"max=20,dive,max=40"`
	NumberOfPosts     Int      `json:"numberOfPosts" validate:"gte=0,lte=1000"`
	ContentGuidelines string   `json:"contentGuidelines" validate:"max=20000"`
	ApprovalRequired  bool     `json:"approvalRequired"`

	CompensationType string `json:"compensationType" validate:"max=60"`
	PaymentAmount    string `json:"paymentAmount" validate:"max=60"`
	ProductDetails   string `json:"productDetails" validate:"max=2000"`

	BannerImageURL string `json:"bannerImageUrl" validate:"omitempty,url,max=2048"`
	ReferenceLinks string `json:"referenceLinks" validate:"max=4000"`

	// Only honoured on create: "draft" or "active" (default).
	Status string `json:"status" validate:"omitempty,oneof=draft active"`
}

func (r CampaignRequest) ToModel() *models.Campaign {
	return &models.Campaign{
		Title:        r.Title,
		BrandName:    r.BrandName,
		Description:  r.Description,
		Category:     r.Category,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		CampaignType: r.CampaignType,
		TargetAudience: models.TargetAudience{
			Location:  r.TargetAudience.Location,
			AgeGroup:  r.TargetAudience.AgeGroup,
			Gender:    r.TargetAudience.Gender,
			Interests: r.TargetAudience.Interests,
		},
		Platforms: r.Platforms,
		MinRequirements: models.MinRequirements{
			FollowersCount: r.MinRequirements.FollowersCount,
			EngagementRate: r.MinRequirements.EngagementRate,
			ContentStyle:   r.MinRequirements.ContentStyle,
			Languages:      r.MinRequirements.Languages,
		},
		NicheMatch:             r.NicheMatch,
		GeographicRestrictions: r.GeographicRestrictions,
		ContentFormat:          r.ContentFormat,
		NumberOfPosts:          int(r.NumberOfPosts),
		ContentGuidelines:      r.ContentGuidelines,
		ApprovalRequired:       r.ApprovalRequired,
		CompensationType:       r.CompensationType,
		PaymentAmount:          r.PaymentAmount,
		ProductDetails:         r.ProductDetails,
		BannerImageURL:         r.BannerImageURL,
		ReferenceLinks:         r.ReferenceLinks,
		Status:                 r.Status,
	}
}

// Applications

type ApplyRequest struct {
	CampaignID string                     `json:"campaignId" validate:"required,uuid"`
	Platform   string                     `json:"platform" validate:"required,max=40"`
	Followers  followers.Count            `json:"followers" validate:"gte=0"`
	Niche      string                     `json:"niche" validate:"max=60"`
	Message    string                     `json:"message" validate:"max=2000"`
	Metrics    *models.ApplicationMetrics `json:"metrics"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected shortlisted pending"`
}

// Creator profiles

type CreatorProfileRequest struct {
	Platform      string          `json:"platform" validate:"required,max=40"`
	Handle        string          `json:"handle" validate:"required,max=120"`
	ChannelURL    string          `json:"channelUrl" validate:"omitempty,url,max=2048"`
	Followers     followers.Count `json:"followers" validate:"gte=0"`
	Views         followers.Count `json:"views" validate:"gte=0"`
	AvgEngagement float64         `json:"avgEngagement" validate:"gte=0,lte=100"`
	TopTopics     []string        `json:"topTopics" validate:"max=20,dive,max=60"`
}
