package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/followers"
)

// EntityCreator is the audit entity type for creator profile changes.
const EntityCreator = "creator"

// CreatorProfile is a creator's presence on one platform. Latest is the most
// recent snapshot of its statistics.
type CreatorProfile struct {
	CreatorID  uuid.UUID        `json:"creatorId"`
	Platform   string           `json:"platform"`
	Handle     string           `json:"handle"`
	ChannelURL string           `json:"channelUrl,omitempty"`
	Latest     *CreatorSnapshot `json:"latest,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// CreatorSnapshot is one point-in-time reading of a profile's statistics.
// Snapshots are append-only. Field order matches the creator_snapshots columns.
type CreatorSnapshot struct {
	ID            uuid.UUID       `json:"id"`
	CreatorID     uuid.UUID       `json:"creatorId"`
	Platform      string          `json:"platform"`
	Followers     followers.Count `json:"followers"`
	Views         int64           `json:"views"`
	AvgEngagement float64         `json:"avgEngagement"` // percent
	TopTopics     []string        `json:"topTopics"`
	CapturedAt    time.Time       `json:"capturedAt"`
}

// Metrics is the application metrics block the snapshot stands in for.
func (s CreatorSnapshot) Metrics() *ApplicationMetrics {
	var reach *followers.Count
	if s.Views > 0 {
		v := followers.Count(s.Views)
		reach = &v
	}
	return &ApplicationMetrics{
		Followers:  s.Followers,
		Engagement: s.AvgEngagement,
		Reach:      reach,
	}
}
