package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actor types
const (
	ActorBrand   = "brand"
	ActorCreator = "creator"
	ActorSystem  = "system"
)

// EntityCampaign is the entity type for campaign activity. Application
// actions are filed under their campaign so one feed shows both; account
// entries use the account's user type.
const EntityCampaign = "campaign"

// AuditLog field order matches the audit_log columns.
type AuditLog struct {
	ID         uuid.UUID      `json:"id"`
	ActorID    *uuid.UUID     `json:"actorId,omitempty"`
	ActorType  string         `json:"actorType"` // brand/creator/system
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   *uuid.UUID     `json:"entityId,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
