package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/events"
	"github.com/sponsorconnect/backend/internal/listquery"
	"github.com/sponsorconnect/backend/internal/models"
	"go.uber.org/zap"
)

// recordAudit never fails the caller; the state change has already committed.
func recordAudit(ctx context.Context, audit AuditLogger, log *zap.Logger, entry models.AuditLog) {
	if err := audit.Log(ctx, entry); err != nil {
		log.Warn("audit log write failed",
			zap.String("action", entry.Action),
			zap.String("entity_type", entry.EntityType),
			zap.Error(err),
		)
	}
}

func publish(ctx context.Context, p events.Publisher, eventType string, payload map[string]any, audience ...uuid.UUID) {
	_ = p.Publish(ctx, events.StreamMarketplace, events.Event{
		Type:     eventType,
		Payload:  payload,
		Audience: audience,
	})
}

func actorType(id models.Identity) string {
	if id.IsBrand() {
		return models.ActorBrand
	}
	return models.ActorCreator
}

// window turns list params into a LIMIT/OFFSET pair.
func window(p listquery.Params, defaultSize int) (listquery.Params, int, int) {
	p = p.Normalize(defaultSize)
	return p, p.PageSize, p.Offset()
}
