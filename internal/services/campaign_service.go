package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/events"
	"github.com/sponsorconnect/backend/internal/listquery"
	"github.com/sponsorconnect/backend/internal/metrics"
	"github.com/sponsorconnect/backend/internal/models"
	"github.com/sponsorconnect/backend/internal/repositories"
	"github.com/sponsorconnect/backend/internal/richtext"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type CampaignService struct {
	campaigns CampaignStore
	audit     AuditLogger
	drafts    DraftDiscarder
	publisher events.Publisher
	metrics   *metrics.Metrics
	pageSize  int
	log       *zap.Logger
	now       func() time.Time
}

func NewCampaignService(
	campaigns CampaignStore,
	audit AuditLogger,
	drafts DraftDiscarder,
	publisher events.Publisher,
	m *metrics.Metrics,
	pageSize int,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		audit:     audit,
		drafts:    drafts,
		publisher: publisher,
		metrics:   m,
		pageSize:  pageSize,
		log:       log,
		now:       time.Now,
	}
}

// prepare cleans user content and checks the fields required for status.
// Drafts only need a title; anything going live needs the full brief.
func prepare(c *models.Campaign, status string) error {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = richtext.Sanitize(c.Description)
	c.DescriptionText = richtext.PlainText(c.Description)
	c.ContentGuidelines = richtext.Sanitize(c.ContentGuidelines)
	c.Normalize()

	if c.Title == "" {
		return apperrors.Validation("title is required")
	}
	if c.NumberOfPosts < 0 {
		return apperrors.Validation("numberOfPosts cannot be negative")
	}

	var start, end time.Time
	var err error
	if c.StartDate != "" {
		if start, err = time.Parse(dateLayout, c.StartDate); err != nil {
			return apperrors.Validation("startDate must be YYYY-MM-DD")
		}
	}
	if c.EndDate != "" {
		if end, err = time.Parse(dateLayout, c.EndDate); err != nil {
			return apperrors.Validation("endDate must be YYYY-MM-DD")
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return apperrors.Validation("endDate is before startDate")
	}

	if status == models.CampaignStatusDraft {
		return nil
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"description", c.DescriptionText},
		{"category", c.Category},
		{"campaignType", c.CampaignType},
		{"startDate", c.StartDate},
		{"endDate", c.EndDate},
		{"compensationType", c.CompensationType},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(c.Platforms) == 0 {
		missing = append(missing, "platforms")
	}
	if len(missing) > 0 {
		return apperrors.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Create stores a new campaign as draft or active and drops the brand's saved form.
func (s *CampaignService) Create(ctx context.Context, brand models.Identity, c *models.Campaign) error {
	if !brand.IsBrand() {
		return apperrors.ErrForbidden
	}
	switch c.Status {
	case "":
		c.Status = models.CampaignStatusActive
	case models.CampaignStatusDraft, models.CampaignStatusActive:
	default:
		return apperrors.Validation("a new campaign must be draft or active")
	}
	if err := prepare(c, c.Status); err != nil {
		return err
	}

	c.BrandID = brand.UserID
	if strings.TrimSpace(c.BrandName) == "" {
		c.BrandName = brand.Name
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return err
	}

	if s.drafts != nil {
		if err := s.drafts.Discard(ctx, brand.UserID); err != nil {
			s.log.Warn("clear campaign draft failed", zap.String("brand_id", brand.UserID.String()), zap.Error(err))
		}
	}

	recordAudit(ctx, s.audit, s.log, models.AuditLog{
		ActorID:    &brand.UserID,
		ActorType:  models.ActorBrand,
		Action:     "campaign_created",
		EntityType: models.EntityCampaign,
		EntityID:   &c.ID,
		Meta:       map[string]any{"status": c.Status},
	})
	s.metrics.CampaignsCreated.WithLabelValues(c.Status).Inc()
	return nil
}

// owned loads a campaign the brand owns. Other brands' campaigns look missing.
func (s *CampaignService) owned(ctx context.Context, brand models.Identity, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !brand.IsBrand() || c.BrandID != brand.UserID {
		return nil, apperrors.ErrNotFound
	}
	return c, nil
}

// Get returns any campaign to its owner and non-draft campaigns to everyone else.
func (s *CampaignService) Get(ctx context.Context, caller models.Identity, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.BrandID == caller.UserID && caller.IsBrand() {
		return c, nil
	}
	if c.Status == models.CampaignStatusDraft {
		return nil, apperrors.ErrNotFound
	}
	return c, nil
}

// Update replaces the content of a draft or active campaign. Status and the
// applicants counter are not client-controlled.
func (s *CampaignService) Update(ctx context.Context, brand models.Identity, id uuid.UUID, c *models.Campaign) error {
	existing, err := s.owned(ctx, brand, id)
	if err != nil {
		return err
	}
	if !existing.Editable() {
		return apperrors.ErrCampaignReadOnly
	}
	if err := prepare(c, existing.Status); err != nil {
		return err
	}

	c.ID = existing.ID
	c.BrandID = existing.BrandID
	if strings.TrimSpace(c.BrandName) == "" {
		c.BrandName = existing.BrandName
	}
	if c.BannerImageURL == "" {
		c.BannerImageURL = existing.BannerImageURL
	}
	if err := s.campaigns.Update(ctx, c); err != nil {
		return err
	}
	c.Status = existing.Status
	c.Applicants = existing.Applicants
	c.CreatedAt = existing.CreatedAt

	recordAudit(ctx, s.audit, s.log, models.AuditLog{
		ActorID:    &brand.UserID,
		ActorType:  models.ActorBrand,
		Action:     "campaign_updated",
		EntityType: models.EntityCampaign,
		EntityID:   &c.ID,
	})
	return nil
}

// Delete removes a draft. Anything published keeps its history.
func (s *CampaignService) Delete(ctx context.Context, brand models.Identity, id uuid.UUID) error {
	c, err := s.owned(ctx, brand, id)
	if err != nil {
		return err
	}
	if c.Status != models.CampaignStatusDraft {
		return fmt.Errorf("only drafts can be deleted: %w", apperrors.ErrInvalidState)
	}
	if err := s.campaigns.Delete(ctx, id); err != nil {
		return err
	}

	recordAudit(ctx, s.audit, s.log, models.AuditLog{
		ActorID:    &brand.UserID,
		ActorType:  models.ActorBrand,
		Action:     "campaign_deleted",
		EntityType: models.EntityCampaign,
		EntityID:   &id,
	})
	return nil
}

func (s *CampaignService) Publish(ctx context.Context, brand models.Identity, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.owned(ctx, brand, id)
	if err != nil {
		return nil, err
	}
	if c.Status == models.CampaignStatusDraft {
		// the draft may have been saved half-finished
		if err := prepare(c, models.CampaignStatusActive); err != nil {
			return nil, err
		}
	}
	return c, s.transition(ctx, c, models.CampaignStatusActive, "publish", &brand.UserID, models.ActorBrand)
}

func (s *CampaignService) Complete(ctx context.Context, brand models.Identity, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.owned(ctx, brand, id)
	if err != nil {
		return nil, err
	}
	return c, s.transition(ctx, c, models.CampaignStatusCompleted, "complete", &brand.UserID, models.ActorBrand)
}

func (s *CampaignService) Cancel(ctx context.Context, brand models.Identity, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.owned(ctx, brand, id)
	if err != nil {
		return nil, err
	}
	return c, s.transition(ctx, c, models.CampaignStatusCancelled, "cancel", &brand.UserID, models.ActorBrand)
}

// transition validates and performs a status change with audit logging.
func (s *CampaignService) transition(ctx context.Context, c *models.Campaign, to, action string, actorID *uuid.UUID, actor string) error {
	if !models.IsValidCampaignTransition(c.Status, to) {
		return apperrors.Transition(c.Status, action)
	}

	from := c.Status
	if err := s.campaigns.UpdateStatus(ctx, c.ID, from, to); err != nil {
		return err
	}
	c.Status = to

	recordAudit(ctx, s.audit, s.log, models.AuditLog{
		ActorID:    actorID,
		ActorType:  actor,
		Action:     fmt.Sprintf("campaign_status_%s_to_%s", from, to),
		EntityType: models.EntityCampaign,
		EntityID:   &c.ID,
		Meta:       map[string]any{"old_status": from, "new_status": to},
	})
	s.metrics.CampaignTransitions.WithLabelValues(to).Inc()

	publish(ctx, s.publisher, events.EventCampaignStatusChanged, map[string]any{
		"campaign_id": c.ID.String(),
		"title":       c.Title,
		"old_status":  from,
		"new_status":  to,
	}, c.BrandID)

	s.log.Info("campaign status changed",
		zap.String("campaign_id", c.ID.String()),
		zap.String("from", from),
		zap.String("to", to),
	)
	return nil
}

func (s *CampaignService) list(ctx context.Context, f repositories.CampaignFilter, p listquery.Params) (listquery.Page[models.Campaign], error) {
	p, f.Limit, f.Offset = window(p, s.pageSize)
	f.Query = p.Query
	if f.Status == "" {
		f.Status = p.Status
	}
	items, total, err := s.campaigns.List(ctx, f)
	if err != nil {
		return listquery.Page[models.Campaign]{}, err
	}
	return listquery.NewPage(items, total, p.Page, p.PageSize), nil
}

// ListOwned lists the brand's own campaigns in every status.
func (s *CampaignService) ListOwned(ctx context.Context, brand models.Identity, p listquery.Params) (listquery.Page[models.Campaign], error) {
	if !brand.IsBrand() {
		return listquery.Page[models.Campaign]{}, apperrors.ErrForbidden
	}
	return s.list(ctx, repositories.CampaignFilter{BrandID: &brand.UserID}, p)
}

// ListActive lists the campaigns open for applications. The status filter is fixed.
func (s *CampaignService) ListActive(ctx context.Context, p listquery.Params) (listquery.Page[models.Campaign], error) {
	return s.list(ctx, repositories.CampaignFilter{Status: models.CampaignStatusActive}, p)
}

// SetBanner points the campaign at an uploaded banner image.
func (s *CampaignService) SetBanner(ctx context.Context, brand models.Identity, id uuid.UUID, url string) (*models.Campaign, error) {
	c, err := s.owned(ctx, brand, id)
	if err != nil {
		return nil, err
	}
	if !c.Editable() {
		return nil, apperrors.ErrCampaignReadOnly
	}
	if err := s.campaigns.SetBanner(ctx, id, url); err != nil {
		return nil, err
	}
	c.BannerImageURL = url
	return c, nil
}

// CheckEditable fails unless brand owns campaign id and may still change it.
func (s *CampaignService) CheckEditable(ctx context.Context, brand models.Identity, id uuid.UUID) error {
	c, err := s.owned(ctx, brand, id)
	if err != nil {
		return err
	}
	if !c.Editable() {
		return apperrors.ErrCampaignReadOnly
	}
	return nil
}

func (s *CampaignService) Activity(ctx context.Context, brand models.Identity, id uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	if _, err := s.owned(ctx, brand, id); err != nil {
		return nil, err
	}
	return s.audit.GetByEntity(ctx, models.EntityCampaign, id, limit, offset)
}

// ExpireEnded completes active campaigns whose end date has passed.
func (s *CampaignService) ExpireEnded(ctx context.Context) (int, error) {
	ended, err := s.campaigns.ListEnded(ctx, s.now().Format(dateLayout))
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range ended {
		c := &ended[i]
		err := s.transition(ctx, c, models.CampaignStatusCompleted, "complete", nil, models.ActorSystem)
		if errors.Is(err, apperrors.ErrStatusChanged) {
			continue
		}
		if err != nil {
			return expired, fmt.Errorf("complete campaign %s: %w", c.ID, err)
		}
		expired++
	}
	s.metrics.CampaignsExpired.Add(float64(expired))
	return expired, nil
}

// ReconcileApplicants resets every applicants counter that disagrees with the
// applications table.
func (s *CampaignService) ReconcileApplicants(ctx context.Context) ([]repositories.ApplicantDrift, error) {
	drift, err := s.campaigns.ReconcileApplicants(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range drift {
		s.log.Warn("applicants counter drift repaired",
			zap.String("campaign_id", d.CampaignID.String()),
			zap.Int("stored", d.Stored),
			zap.Int("actual", d.Actual),
		)
	}
	s.metrics.ApplicantDrift.Add(float64(len(drift)))
	return drift, nil
}
