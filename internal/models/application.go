package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/followers"
)

type ApplicationMetrics struct {
	Followers  followers.Count  `json:"followers" validate:"gte=0"`
	Engagement float64          `json:"engagement" validate:"gte=0,lte=100"`
	Reach      *followers.Count `json:"reach,omitempty" validate:"omitempty,gte=0"`
}

type Application struct {
	ID           uuid.UUID           `json:"id"`
	CampaignID   uuid.UUID           `json:"campaignId"`
	CampaignName string              `json:"campaignName"`
	CreatorID    uuid.UUID           `json:"creatorId"`
	CreatorName  string              `json:"creatorName"`
	CreatorEmail string              `json:"creatorEmail"`
	Platform     string              `json:"platform"`
	Followers    followers.Count     `json:"followers"`
	Niche        string              `json:"niche,omitempty"`
	Status       string              `json:"status"`
	Message      *string             `json:"message,omitempty"`
	Metrics      *ApplicationMetrics `json:"metrics,omitempty"`
	AppliedAt    time.Time           `json:"appliedAt"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

func (a Application) SearchFields() []string {
	return []string{a.CreatorName, a.Platform, a.Niche}
}

func (a Application) CurrentStatus() string { return a.Status }
