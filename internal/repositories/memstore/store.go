// Package memstore is an in-process implementation of the repositories, used by
// tests and by STORAGE_DRIVER=memory. All collections share one lock, so the
// applicants counter and the applications map change together.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/listquery"
	"github.com/sponsorconnect/backend/internal/models"
	"github.com/sponsorconnect/backend/internal/repositories"
)

type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	campaigns    map[uuid.UUID]*models.Campaign
	applications map[uuid.UUID]*models.Application
	accounts     map[uuid.UUID]*models.Account
	audit        []models.AuditLog
	profiles     map[profileKey]*models.CreatorProfile
	snapshots    []models.CreatorSnapshot
}

type profileKey struct {
	creator  uuid.UUID
	platform string
}

func New() *Store {
	return &Store{
		now:          time.Now,
		campaigns:    make(map[uuid.UUID]*models.Campaign),
		applications: make(map[uuid.UUID]*models.Application),
		accounts:     make(map[uuid.UUID]*models.Account),
		profiles:     make(map[profileKey]*models.CreatorProfile),
	}
}

func (s *Store) Campaigns() *CampaignRepo       { return &CampaignRepo{s} }
func (s *Store) Applications() *ApplicationRepo { return &ApplicationRepo{s} }
func (s *Store) Accounts() *AccountRepo         { return &AccountRepo{s} }
func (s *Store) Audit() *AuditRepo              { return &AuditRepo{s} }
func (s *Store) CreatorProfiles() *CreatorProfileRepo { return &CreatorProfileRepo{s} }

// pageOf converts a LIMIT/OFFSET window back into the page it addresses.
func pageOf(limit, offset int) listquery.Params {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return listquery.Params{Page: offset/limit + 1, PageSize: limit}
}

type CampaignRepo struct{ s *Store }

func (r *CampaignRepo) Create(_ context.Context, c *models.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.Normalize()
	c.ID = uuid.New()
	c.Applicants = 0
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.s.campaigns[c.ID] = &cp
	return nil
}

func (r *CampaignRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CampaignRepo) Update(_ context.Context, c *models.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.campaigns[c.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !cur.Editable() {
		return apperrors.ErrCampaignReadOnly
	}
	c.Normalize()
	next := *c
	next.BrandID = cur.BrandID
	next.BrandName = cur.BrandName
	next.Status = cur.Status
	next.Applicants = cur.Applicants
	next.BannerImageURL = cur.BannerImageURL
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = r.s.now()
	r.s.campaigns[c.ID] = &next

	c.Applicants = next.Applicants
	c.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *CampaignRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if c.Status != from {
		return apperrors.ErrStatusChanged
	}
	c.Status = to
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *CampaignRepo) SetBanner(_ context.Context, id uuid.UUID, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.BannerImageURL = url
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *CampaignRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if c.Status != models.CampaignStatusDraft {
		return apperrors.ErrCampaignReadOnly
	}
	delete(r.s.campaigns, id)
	return nil
}

func (r *CampaignRepo) List(_ context.Context, f repositories.CampaignFilter) ([]models.Campaign, int, error) {
	r.s.mu.RLock()
	items := make([]models.Campaign, 0, len(r.s.campaigns))
	for _, c := range r.s.campaigns {
		if f.BrandID != nil && c.BrandID != *f.BrandID {
			continue
		}
		items = append(items, *c)
	}
	r.s.mu.RUnlock()

	slices.SortFunc(items, func(a, b models.Campaign) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	p := pageOf(f.Limit, f.Offset)
	p.Status, p.Query = f.Status, f.Query
	page := listquery.Apply(items, p)
	return page.Items, page.Total, nil
}

func (r *CampaignRepo) ListEnded(_ context.Context, today string) ([]models.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Campaign
	for _, c := range r.s.campaigns {
		if c.Status == models.CampaignStatusActive && c.EndDate != "" && c.EndDate < today {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *CampaignRepo) ReconcileApplicants(_ context.Context) ([]repositories.ApplicantDrift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	actual := make(map[uuid.UUID]int, len(r.s.campaigns))
	for _, a := range r.s.applications {
		actual[a.CampaignID]++
	}

	var drifts []repositories.ApplicantDrift
	for id, c := range r.s.campaigns {
		if c.Applicants != actual[id] {
			drifts = append(drifts, repositories.ApplicantDrift{CampaignID: id, Stored: c.Applicants, Actual: actual[id]})
			c.Applicants = actual[id]
		}
	}
	return drifts, nil
}

// CorruptApplicants overwrites a counter; tests use it to simulate drift.
func (r *CampaignRepo) CorruptApplicants(id uuid.UUID, n int) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.campaigns[id]; ok {
		c.Applicants = n
	}
}

type ApplicationRepo struct{ s *Store }

func (r *ApplicationRepo) Apply(_ context.Context, a *models.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[a.CampaignID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if c.Status != models.CampaignStatusActive {
		return apperrors.ErrCampaignNotOpen
	}
	for _, existing := range r.s.applications {
		if existing.CampaignID == a.CampaignID && existing.CreatorID == a.CreatorID {
			return apperrors.ErrAlreadyApplied
		}
	}

	now := r.s.now()
	a.ID = uuid.New()
	a.CampaignName = c.Title
	a.AppliedAt = now
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	r.s.applications[a.ID] = &cp
	c.Applicants++
	c.UpdatedAt = now
	return nil
}

func (r *ApplicationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.applications[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *ApplicationRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.applications[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if a.Status != from {
		return apperrors.ErrStatusChanged
	}
	a.Status = to
	a.UpdatedAt = r.s.now()
	return nil
}

func (r *ApplicationRepo) List(_ context.Context, f repositories.ApplicationFilter) ([]models.Application, int, error) {
	r.s.mu.RLock()
	items := make([]models.Application, 0)
	for _, a := range r.s.applications {
		if f.CampaignID != nil && a.CampaignID != *f.CampaignID {
			continue
		}
		if f.CreatorID != nil && a.CreatorID != *f.CreatorID {
			continue
		}
		if f.BrandID != nil {
			c, ok := r.s.campaigns[a.CampaignID]
			if !ok || c.BrandID != *f.BrandID {
				continue
			}
		}
		items = append(items, *a)
	}
	r.s.mu.RUnlock()

	slices.SortFunc(items, func(a, b models.Application) int {
		if c := b.AppliedAt.Compare(a.AppliedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	p := pageOf(f.Limit, f.Offset)
	p.Status, p.Query = f.Status, f.Query
	page := listquery.Apply(items, p)
	return page.Items, page.Total, nil
}

type AccountRepo struct{ s *Store }

func (r *AccountRepo) emailTaken(email string, except uuid.UUID) bool {
	for id, a := range r.s.accounts {
		if id != except && strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func (r *AccountRepo) Create(_ context.Context, a *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(a.Email, uuid.Nil) {
		return apperrors.ErrEmailTaken
	}
	a.ID = uuid.New()
	a.CreatedAt = r.s.now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	r.s.accounts[a.ID] = &cp
	return nil
}

func (r *AccountRepo) GetByID(_ context.Context, userType string, id uuid.UUID) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok || a.UserType != userType {
		return nil, apperrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *AccountRepo) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *AccountRepo) Update(_ context.Context, a *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.accounts[a.ID]
	if !ok || cur.UserType != a.UserType {
		return apperrors.ErrNotFound
	}
	if r.emailTaken(a.Email, a.ID) {
		return apperrors.ErrEmailTaken
	}
	cur.Name = a.Name
	cur.Email = a.Email
	cur.UpdatedAt = r.s.now()
	a.CreatedAt = cur.CreatedAt
	a.UpdatedAt = cur.UpdatedAt
	return nil
}

type AuditRepo struct{ s *Store }

func (r *AuditRepo) Log(_ context.Context, entry models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry.ID = uuid.New()
	entry.CreatedAt = r.s.now()
	r.s.audit = append(r.s.audit, entry)
	return nil
}

func (r *AuditRepo) GetByEntity(_ context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := []models.AuditLog{}
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		e := r.s.audit[i]
		if e.EntityType == entityType && e.EntityID != nil && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return []models.AuditLog{}, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}

type CreatorProfileRepo struct{ s *Store }

func (r *CreatorProfileRepo) Save(_ context.Context, p *models.CreatorProfile, snap models.CreatorSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	key := profileKey{p.CreatorID, p.Platform}
	next := *p
	next.Latest = nil
	next.CreatedAt, next.UpdatedAt = now, now
	if cur, ok := r.s.profiles[key]; ok {
		next.CreatedAt = cur.CreatedAt
	}
	r.s.profiles[key] = &next

	snap.ID = uuid.New()
	snap.CreatorID, snap.Platform = p.CreatorID, p.Platform
	snap.TopTopics = slices.Clone(snap.TopTopics)
	if snap.TopTopics == nil {
		snap.TopTopics = []string{}
	}
	snap.CapturedAt = now
	r.s.snapshots = append(r.s.snapshots, snap)

	p.CreatedAt, p.UpdatedAt = next.CreatedAt, next.UpdatedAt
	p.Latest = &snap
	return nil
}

// latest scans from the end, since snapshots are only ever appended.
func (r *CreatorProfileRepo) latest(creatorID uuid.UUID, platform string) (models.CreatorSnapshot, bool) {
	for i := len(r.s.snapshots) - 1; i >= 0; i-- {
		if s := r.s.snapshots[i]; s.CreatorID == creatorID && s.Platform == platform {
			s.TopTopics = slices.Clone(s.TopTopics)
			return s, true
		}
	}
	return models.CreatorSnapshot{}, false
}

func (r *CreatorProfileRepo) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]models.CreatorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.CreatorProfile{}
	for key, p := range r.s.profiles {
		if key.creator != creatorID {
			continue
		}
		cp := *p
		if s, ok := r.latest(creatorID, p.Platform); ok {
			cp.Latest = &s
		}
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b models.CreatorProfile) int { return strings.Compare(a.Platform, b.Platform) })
	return out, nil
}

func (r *CreatorProfileRepo) LatestSnapshot(_ context.Context, creatorID uuid.UUID, platform string) (*models.CreatorSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.latest(creatorID, platform)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}
