package services

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/followers"
	"github.com/sponsorconnect/backend/internal/models"
	"go.uber.org/zap"
)

const maxTopTopics = 10

// CreatorProfileService keeps the self-reported platform statistics that
// brands see and that Apply falls back on when no metrics are sent.
type CreatorProfileService struct {
	profiles CreatorProfileStore
	accounts AccountStore
	audit    AuditLogger
	log      *zap.Logger
}

func NewCreatorProfileService(profiles CreatorProfileStore, accounts AccountStore, audit AuditLogger, log *zap.Logger) *CreatorProfileService {
	return &CreatorProfileService{profiles: profiles, accounts: accounts, audit: audit, log: log}
}

type CreatorProfileInput struct {
	Platform      string
	Handle        string
	ChannelURL    string
	Followers     followers.Count
	Views         int64
	AvgEngagement float64
	TopTopics     []string
}

// platformKey is how platforms are compared: "YouTube" and " youtube" match.
func platformKey(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

func cleanTopics(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || slices.ContainsFunc(out, func(s string) bool { return strings.EqualFold(s, t) }) {
			continue
		}
		out = append(out, t)
		if len(out) == maxTopTopics {
			break
		}
	}
	return out
}

// Save upserts the caller's profile for in.Platform and records a new snapshot.
func (s *CreatorProfileService) Save(ctx context.Context, creator models.Identity, in CreatorProfileInput) (*models.CreatorProfile, error) {
	if !creator.IsCreator() {
		return nil, apperrors.ErrForbidden
	}
	platform := platformKey(in.Platform)
	if platform == "" {
		return nil, apperrors.Validation("platform is required")
	}
	handle := strings.TrimSpace(in.Handle)
	if handle == "" {
		return nil, apperrors.Validation("handle is required")
	}
	switch {
	case in.Followers < 0:
		return nil, apperrors.Validation("followers must not be negative")
	case in.Views < 0:
		return nil, apperrors.Validation("views must not be negative")
	case in.AvgEngagement < 0 || in.AvgEngagement > 100:
		return nil, apperrors.Validation("avgEngagement must be between 0 and 100")
	}

	p := &models.CreatorProfile{
		CreatorID:  creator.UserID,
		Platform:   platform,
		Handle:     handle,
		ChannelURL: strings.TrimSpace(in.ChannelURL),
	}
	snap := models.CreatorSnapshot{
		Followers:     in.Followers,
		Views:         in.Views,
		AvgEngagement: in.AvgEngagement,
		TopTopics:     cleanTopics(in.TopTopics),
	}
	if err := s.profiles.Save(ctx, p, snap); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, models.AuditLog{
		ActorID:    &creator.UserID,
		ActorType:  models.ActorCreator,
		Action:     "creator_profile_saved",
		EntityType: models.EntityCreator,
		EntityID:   &creator.UserID,
		Meta: map[string]any{
			"platform":  platform,
			"followers": int64(in.Followers),
		},
	})
	return p, nil
}

// Profiles lists a creator's profiles. Brands may read any creator; creators
// only themselves.
func (s *CreatorProfileService) Profiles(ctx context.Context, viewer models.Identity, creatorID uuid.UUID) ([]models.CreatorProfile, error) {
	if !viewer.IsBrand() && viewer.UserID != creatorID {
		return nil, apperrors.ErrForbidden
	}
	if _, err := s.accounts.GetByID(ctx, models.UserTypeCreator, creatorID); err != nil {
		return nil, err
	}
	return s.profiles.ListByCreator(ctx, creatorID)
}
