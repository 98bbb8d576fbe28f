package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/events"
	"github.com/sponsorconnect/backend/internal/followers"
	"github.com/sponsorconnect/backend/internal/listquery"
	"github.com/sponsorconnect/backend/internal/metrics"
	"github.com/sponsorconnect/backend/internal/models"
	"github.com/sponsorconnect/backend/internal/repositories"
	"go.uber.org/zap"
)

type ApplicationService struct {
	applications ApplicationStore
	campaigns    CampaignStore
	accounts     AccountStore
	profiles     CreatorProfileStore
	audit        AuditLogger
	publisher    events.Publisher
	metrics      *metrics.Metrics
	pageSize     int
	log          *zap.Logger
}

func NewApplicationService(
	applications ApplicationStore,
	campaigns CampaignStore,
	accounts AccountStore,
	profiles CreatorProfileStore,
	audit AuditLogger,
	publisher events.Publisher,
	m *metrics.Metrics,
	pageSize int,
	log *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		campaigns:    campaigns,
		accounts:     accounts,
		profiles:     profiles,
		audit:        audit,
		publisher:    publisher,
		metrics:      m,
		pageSize:     pageSize,
		log:          log,
	}
}

type ApplyInput struct {
	CampaignID uuid.UUID
	Platform   string
	Followers  followers.Count
	Niche      string
	Message    string
	Metrics    *models.ApplicationMetrics
}

// Apply records a creator's application. The campaign's applicants counter is
// incremented in the same transaction. Without explicit metrics, the latest
// profile snapshot for the platform is used, and also fills in a zero
// follower count.
func (s *ApplicationService) Apply(ctx context.Context, creator models.Identity, in ApplyInput) (*models.Application, error) {
	if !creator.IsCreator() {
		return nil, apperrors.ErrForbidden
	}
	platform := strings.TrimSpace(in.Platform)
	if platform == "" {
		return nil, apperrors.Validation("platform is required")
	}

	c, err := s.campaigns.GetByID(ctx, in.CampaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignStatusActive {
		return nil, apperrors.ErrCampaignNotOpen
	}

	name, email := creator.Name, creator.Email
	if acc, err := s.accounts.GetByID(ctx, models.UserTypeCreator, creator.UserID); err == nil {
		name, email = acc.Name, acc.Email
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	stats, count := in.Metrics, in.Followers
	if stats == nil {
		snap, err := s.profiles.LatestSnapshot(ctx, creator.UserID, platformKey(platform))
		switch {
		case err == nil:
			stats = snap.Metrics()
			if count == 0 {
				count = snap.Followers
			}
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
	}

	a := &models.Application{
		CampaignID:   in.CampaignID,
		CreatorID:    creator.UserID,
		CreatorName:  name,
		CreatorEmail: email,
		Platform:     platform,
		Followers:    count,
		Niche:        strings.TrimSpace(in.Niche),
		Status:       models.ApplicationStatusPending,
		Metrics:      stats,
	}
	if msg := strings.TrimSpace(in.Message); msg != "" {
		a.Message = &msg
	}
	if err := s.applications.Apply(ctx, a); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, models.AuditLog{
		ActorID:    &creator.UserID,
		ActorType:  models.ActorCreator,
		Action:     "application_created",
		EntityType: models.EntityCampaign,
		EntityID:   &a.CampaignID,
		Meta:       map[string]any{"application_id": a.ID.String()},
	})
	s.metrics.ApplicationsSubmitted.Inc()

	publish(ctx, s.publisher, events.EventApplicationCreated, map[string]any{
		"application_id": a.ID.String(),
		"campaign_id":    a.CampaignID.String(),
		"campaign_name":  a.CampaignName,
		"creator_name":   a.CreatorName,
		"platform":       a.Platform,
		"followers":      int64(a.Followers),
	}, c.BrandID)

	return a, nil
}

// UpdateStatus moves an application to target, which must be reachable from
// its current status by one review action.
func (s *ApplicationService) UpdateStatus(ctx context.Context, brand models.Identity, id uuid.UUID, target string) (*models.Application, error) {
	action, ok := models.ActionForStatus(target)
	if !ok {
		return nil, apperrors.Validation("unknown application status %q", target)
	}
	return s.Act(ctx, brand, id, action)
}

// Act applies a review action. Only the brand that owns the campaign may act.
func (s *ApplicationService) Act(ctx context.Context, brand models.Identity, id uuid.UUID, action string) (*models.Application, error) {
	a, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.campaigns.GetByID(ctx, a.CampaignID)
	if err != nil {
		return nil, err
	}
	if !brand.IsBrand() || c.BrandID != brand.UserID {
		return nil, apperrors.ErrNotFound
	}

	next, ok := models.NextApplicationStatus(a.Status, action)
	if !ok {
		s.metrics.ApplicationTransitions.WithLabelValues(action, "invalid").Inc()
		return nil, apperrors.Transition(a.Status, action)
	}

	from := a.Status
	if err := s.applications.UpdateStatus(ctx, a.ID, from, next); err != nil {
		if errors.Is(err, apperrors.ErrStatusChanged) {
			s.metrics.ApplicationTransitions.WithLabelValues(action, "conflict").Inc()
		}
		return nil, err
	}
	a.Status = next
	s.metrics.ApplicationTransitions.WithLabelValues(action, "ok").Inc()

	recordAudit(ctx, s.audit, s.log, models.AuditLog{
		ActorID:    &brand.UserID,
		ActorType:  models.ActorBrand,
		Action:     fmt.Sprintf("application_%s", action),
		EntityType: models.EntityCampaign,
		EntityID:   &a.CampaignID,
		Meta: map[string]any{
			"application_id": a.ID.String(),
			"old_status":     from,
			"new_status":     next,
		},
	})

	publish(ctx, s.publisher, events.EventApplicationStatusChanged, map[string]any{
		"application_id": a.ID.String(),
		"campaign_id":    a.CampaignID.String(),
		"campaign_name":  a.CampaignName,
		"old_status":     from,
		"new_status":     next,
	}, a.CreatorID, c.BrandID)

	return a, nil
}

func (s *ApplicationService) list(ctx context.Context, f repositories.ApplicationFilter, p listquery.Params) (listquery.Page[models.Application], error) {
	p, f.Limit, f.Offset = window(p, s.pageSize)
	f.Query = p.Query
	if f.Status == "" {
		f.Status = p.Status
	}
	items, total, err := s.applications.List(ctx, f)
	if err != nil {
		return listquery.Page[models.Application]{}, err
	}
	return listquery.NewPage(items, total, p.Page, p.PageSize), nil
}

func (s *ApplicationService) ownedCampaign(ctx context.Context, brand models.Identity, campaignID uuid.UUID) error {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if !brand.IsBrand() || c.BrandID != brand.UserID {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListForCampaign lists every application to one of the brand's campaigns.
func (s *ApplicationService) ListForCampaign(ctx context.Context, brand models.Identity, campaignID uuid.UUID, p listquery.Params) (listquery.Page[models.Application], error) {
	if err := s.ownedCampaign(ctx, brand, campaignID); err != nil {
		return listquery.Page[models.Application]{}, err
	}
	return s.list(ctx, repositories.ApplicationFilter{CampaignID: &campaignID}, p)
}

// Approved is the approved-creators view of a campaign: a query over the
// applications, never a separately maintained list.
func (s *ApplicationService) Approved(ctx context.Context, brand models.Identity, campaignID uuid.UUID, p listquery.Params) (listquery.Page[models.Application], error) {
	if err := s.ownedCampaign(ctx, brand, campaignID); err != nil {
		return listquery.Page[models.Application]{}, err
	}
	return s.list(ctx, repositories.ApplicationFilter{
		CampaignID: &campaignID,
		Status:     models.ApplicationStatusApproved,
	}, p)
}

func (s *ApplicationService) ListForBrand(ctx context.Context, brand models.Identity, p listquery.Params) (listquery.Page[models.Application], error) {
	if !brand.IsBrand() {
		return listquery.Page[models.Application]{}, apperrors.ErrForbidden
	}
	return s.list(ctx, repositories.ApplicationFilter{BrandID: &brand.UserID}, p)
}

func (s *ApplicationService) ListForCreator(ctx context.Context, creator models.Identity, p listquery.Params) (listquery.Page[models.Application], error) {
	if !creator.IsCreator() {
		return listquery.Page[models.Application]{}, apperrors.ErrForbidden
	}
	return s.list(ctx, repositories.ApplicationFilter{CreatorID: &creator.UserID}, p)
}

// List picks the brand or creator view from the caller's role.
func (s *ApplicationService) List(ctx context.Context, caller models.Identity, p listquery.Params) (listquery.Page[models.Application], error) {
	if caller.IsBrand() {
		return s.ListForBrand(ctx, caller, p)
	}
	return s.ListForCreator(ctx, caller, p)
}
