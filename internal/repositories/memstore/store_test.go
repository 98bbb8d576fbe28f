package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/followers"
	"github.com/sponsorconnect/backend/internal/models"
	"github.com/sponsorconnect/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

func activeCampaign(t *testing.T, s *Store, brandID uuid.UUID) *models.Campaign {
	t.Helper()
	c := &models.Campaign{BrandID: brandID, Title: "Summer launch", Status: models.CampaignStatusActive}
	if err := s.Campaigns().Create(context.Background(), c); err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return c
}

func TestConcurrentApplyKeepsCounterExact(t *testing.T) {
	s := New()
	ctx := context.Background()
	c := activeCampaign(t, s, uuid.New())

	const creators = 50
	var accepted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < creators; i++ {
		creatorID := uuid.New()
		// every creator tries twice; only one may land
		for attempt := 0; attempt < 2; attempt++ {
			g.Go(func() error {
				err := s.Applications().Apply(gctx, &models.Application{
					CampaignID: c.ID,
					CreatorID:  creatorID,
					Platform:   "YouTube",
					Status:     models.ApplicationStatusPending,
				})
				if errors.Is(err, apperrors.ErrAlreadyApplied) {
					return nil
				}
				if err == nil {
					accepted.Add(1)
				}
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("apply: %v", err)
	}

	got, err := s.Campaigns().GetByID(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	_, total, err := s.Applications().List(ctx, repositories.ApplicationFilter{CampaignID: &c.ID, Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if accepted.Load() != creators {
		t.Errorf("accepted %d applications, want %d", accepted.Load(), creators)
	}
	if got.Applicants != total || total != creators {
		t.Errorf("applicants = %d, stored applications = %d, want %d", got.Applicants, total, creators)
	}
}

func TestApplyRejectsInactiveAndMissingCampaigns(t *testing.T) {
	s := New()
	ctx := context.Background()

	draft := &models.Campaign{BrandID: uuid.New(), Title: "Draft", Status: models.CampaignStatusDraft}
	if err := s.Campaigns().Create(ctx, draft); err != nil {
		t.Fatal(err)
	}

	err := s.Applications().Apply(ctx, &models.Application{CampaignID: draft.ID, CreatorID: uuid.New()})
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Errorf("draft campaign: got %v, want ErrInvalidState", err)
	}

	err = s.Applications().Apply(ctx, &models.Application{CampaignID: uuid.New(), CreatorID: uuid.New()})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("missing campaign: got %v, want ErrNotFound", err)
	}

	got, _ := s.Campaigns().GetByID(ctx, draft.ID)
	if got.Applicants != 0 {
		t.Errorf("applicants = %d after rejected applies", got.Applicants)
	}
}

func TestUpdateStatusIsCompareAndSet(t *testing.T) {
	s := New()
	ctx := context.Background()
	c := activeCampaign(t, s, uuid.New())
	a := &models.Application{CampaignID: c.ID, CreatorID: uuid.New(), Status: models.ApplicationStatusPending}
	if err := s.Applications().Apply(ctx, a); err != nil {
		t.Fatal(err)
	}

	if err := s.Applications().UpdateStatus(ctx, a.ID, models.ApplicationStatusPending, models.ApplicationStatusApproved); err != nil {
		t.Fatalf("first update: %v", err)
	}
	err := s.Applications().UpdateStatus(ctx, a.ID, models.ApplicationStatusPending, models.ApplicationStatusRejected)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("stale update: got %v, want ErrConflict", err)
	}
	err = s.Applications().UpdateStatus(ctx, uuid.New(), models.ApplicationStatusPending, models.ApplicationStatusRejected)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("missing application: got %v, want ErrNotFound", err)
	}
}

func TestReconcileApplicants(t *testing.T) {
	s := New()
	ctx := context.Background()
	c := activeCampaign(t, s, uuid.New())
	for i := 0; i < 3; i++ {
		if err := s.Applications().Apply(ctx, &models.Application{CampaignID: c.ID, CreatorID: uuid.New()}); err != nil {
			t.Fatal(err)
		}
	}

	drifts, err := s.Campaigns().ReconcileApplicants(ctx)
	if err != nil || len(drifts) != 0 {
		t.Fatalf("unexpected drift on consistent store: %v %v", drifts, err)
	}

	s.Campaigns().CorruptApplicants(c.ID, 7)
	drifts, err = s.Campaigns().ReconcileApplicants(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(drifts) != 1 || drifts[0].Stored != 7 || drifts[0].Actual != 3 {
		t.Errorf("drifts = %+v", drifts)
	}
	got, _ := s.Campaigns().GetByID(ctx, c.ID)
	if got.Applicants != 3 {
		t.Errorf("applicants = %d after reconcile, want 3", got.Applicants)
	}
}

func TestListFiltersAndPages(t *testing.T) {
	s := New()
	ctx := context.Background()
	brand := uuid.New()
	other := uuid.New()

	for i := 0; i < 13; i++ {
		status := models.CampaignStatusActive
		if i%2 == 0 {
			status = models.CampaignStatusDraft
		}
		c := &models.Campaign{BrandID: brand, Title: fmt.Sprintf("Campaign %d", i), Category: "Tech", Status: status}
		if err := s.Campaigns().Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Campaigns().Create(ctx, &models.Campaign{BrandID: other, Title: "Foreign", Status: models.CampaignStatusActive}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		filter    repositories.CampaignFilter
		wantItems int
		wantTotal int
	}{
		{"brand page 1", repositories.CampaignFilter{BrandID: &brand, Limit: 6}, 6, 13},
		{"brand page 3", repositories.CampaignFilter{BrandID: &brand, Limit: 6, Offset: 12}, 1, 13},
		{"brand page 4", repositories.CampaignFilter{BrandID: &brand, Limit: 6, Offset: 18}, 0, 13},
		{"drafts", repositories.CampaignFilter{BrandID: &brand, Status: "draft", Limit: 20}, 7, 7},
		{"search", repositories.CampaignFilter{Query: "campaign 1", Limit: 20}, 4, 4},
		{"everyone active", repositories.CampaignFilter{Status: "active", Limit: 20}, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := s.Campaigns().List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != tt.wantItems || total != tt.wantTotal {
				t.Errorf("got %d items / %d total, want %d / %d", len(items), total, tt.wantItems, tt.wantTotal)
			}
		})
	}
}

func TestAccountsShareEmailSpace(t *testing.T) {
	s := New()
	ctx := context.Background()

	brand := &models.Account{Name: "Acme", Email: "team@acme.io", UserType: models.UserTypeBrand}
	if err := s.Accounts().Create(ctx, brand); err != nil {
		t.Fatal(err)
	}
	dup := &models.Account{Name: "Acme Creator", Email: "TEAM@acme.io", UserType: models.UserTypeCreator}
	if err := s.Accounts().Create(ctx, dup); !errors.Is(err, apperrors.ErrEmailTaken) {
		t.Errorf("got %v, want ErrEmailTaken", err)
	}

	found, err := s.Accounts().FindByEmail(ctx, "Team@Acme.io")
	if err != nil || found.ID != brand.ID {
		t.Errorf("FindByEmail = %v, %v", found, err)
	}
	if _, err := s.Accounts().GetByID(ctx, models.UserTypeCreator, brand.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetByID with wrong role: got %v", err)
	}
}

func TestCreatorSnapshotsAreAppendOnly(t *testing.T) {
	s := New()
	ctx := context.Background()
	creatorID := uuid.New()
	repo := s.CreatorProfiles()

	for _, n := range []followers.Count{100, 200, 300} {
		p := &models.CreatorProfile{CreatorID: creatorID, Platform: "youtube", Handle: fmt.Sprintf("@v%d", n)}
		if err := repo.Save(ctx, p, models.CreatorSnapshot{Followers: n}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if len(s.snapshots) != 3 {
		t.Errorf("snapshots = %d, want 3", len(s.snapshots))
	}

	tests := []struct {
		platform string
		want     followers.Count
		wantErr  error
	}{
		{"youtube", 300, nil},
		{"tiktok", 0, apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			snap, err := repo.LatestSnapshot(ctx, creatorID, tt.platform)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && snap.Followers != tt.want {
				t.Errorf("followers = %d, want %d", snap.Followers, tt.want)
			}
		})
	}

	profiles, err := repo.ListByCreator(ctx, creatorID)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 1 || profiles[0].Handle != "@v300" || profiles[0].Latest.Followers != 300 {
		t.Errorf("profiles = %+v", profiles)
	}
}
