package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/models"
	"github.com/sponsorconnect/backend/internal/repositories"
)

// The services depend on these rather than on the pgx repositories so that
// memstore can stand in for Postgres.

type CampaignStore interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Update(ctx context.Context, c *models.Campaign) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error
	SetBanner(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f repositories.CampaignFilter) ([]models.Campaign, int, error)
	ListEnded(ctx context.Context, today string) ([]models.Campaign, error)
	ReconcileApplicants(ctx context.Context) ([]repositories.ApplicantDrift, error)
}

type ApplicationStore interface {
	Apply(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error
	List(ctx context.Context, f repositories.ApplicationFilter) ([]models.Application, int, error)
}

type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	GetByID(ctx context.Context, userType string, id uuid.UUID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, a *models.Account) error
}

type AuditLogger interface {
	Log(ctx context.Context, entry models.AuditLog) error
	GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}

// CreatorProfileStore keeps one profile per creator and platform. Save appends
// a snapshot every time; snapshots are never rewritten.
type CreatorProfileStore interface {
	Save(ctx context.Context, p *models.CreatorProfile, snap models.CreatorSnapshot) error
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.CreatorProfile, error)
	LatestSnapshot(ctx context.Context, creatorID uuid.UUID, platform string) (*models.CreatorSnapshot, error)
}

// DraftDiscarder drops a brand's saved campaign form once it has been submitted.
type DraftDiscarder interface {
	Discard(ctx context.Context, owner uuid.UUID) error
}

var (
	_ CampaignStore    = (*repositories.CampaignRepo)(nil)
	_ ApplicationStore = (*repositories.ApplicationRepo)(nil)
	_ AccountStore     = (*repositories.AccountRepo)(nil)
	_ AuditLogger      = (*repositories.AuditRepo)(nil)

	_ CreatorProfileStore = (*repositories.CreatorProfileRepo)(nil)
)
