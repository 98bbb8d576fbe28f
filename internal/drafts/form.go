// Package drafts persists in-progress campaign forms for brands.
package drafts

import (
	"slices"
	"strings"

	"github.com/sponsorconnect/backend/internal/models"
)

// Requirements mirrors models.MinRequirements but keeps the raw inputs, since
// a draft may hold values that do not parse yet.
type Requirements struct {
	FollowersCount string   `json:"followersCount"`
	EngagementRate string   `json:"engagementRate"`
	ContentStyle   string   `json:"contentStyle"`
	Languages      []string `json:"languages"`
}

// CampaignForm is the state of the campaign creation form.
type CampaignForm struct {
	Title        string `json:"title"`
	BrandName    string `json:"brandName"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	CampaignType string `json:"campaignType"`

	TargetAudience         models.TargetAudience `json:"targetAudience"`
	Platforms              []string              `json:"platforms"`
	MinRequirements        Requirements          `json:"minRequirements"`
	NicheMatch             bool                  `json:"nicheMatch"`
	GeographicRestrictions string                `json:"geographicRestrictions"`

	ContentFormat     []string `json:"contentFormat"`
	NumberOfPosts     string   `json:"numberOfPosts"`
	ContentGuidelines string   `json:"contentGuidelines"`
	ApprovalRequired  bool     `json:"approvalRequired"`

	CompensationType string `json:"compensationType"`
	PaymentAmount    string `json:"paymentAmount"`
	ProductDetails   string `json:"productDetails"`

	BannerImageURL string `json:"bannerImageUrl"`
	ReferenceLinks string `json:"referenceLinks"`
}

// Defaults is an empty form for brandName with every list present.
func Defaults(brandName string) CampaignForm {
	f := CampaignForm{BrandName: brandName}
	f.Normalize()
	return f
}

// Normalize replaces missing lists with empty ones.
func (f *CampaignForm) Normalize() {
	if f.Platforms == nil {
		f.Platforms = []string{}
	}
	if f.ContentFormat == nil {
		f.ContentFormat = []string{}
	}
	if f.MinRequirements.Languages == nil {
		f.MinRequirements.Languages = []string{}
	}
}

// HasContent reports whether the form is worth persisting.
func (f CampaignForm) HasContent() bool {
	for _, s := range []string{f.Title, f.Description, f.Category, f.CampaignType} {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with f.
func (f CampaignForm) Clone() CampaignForm {
	f.Platforms = slices.Clone(f.Platforms)
	f.ContentFormat = slices.Clone(f.ContentFormat)
	f.MinRequirements.Languages = slices.Clone(f.MinRequirements.Languages)
	f.Normalize()
	return f
}

func (f *CampaignForm) SetBasics(title, description, category, campaignType string) {
	f.Title = title
	f.Description = description
	f.Category = category
	f.CampaignType = campaignType
}

func (f *CampaignForm) SetSchedule(start, end string) {
	f.StartDate = start
	f.EndDate = end
}

func (f *CampaignForm) SetAudience(a models.TargetAudience, platforms []string, nicheMatch bool, geo string) {
	f.TargetAudience = a
	f.Platforms = slices.Clone(platforms)
	f.NicheMatch = nicheMatch
	f.GeographicRestrictions = geo
}

func (f *CampaignForm) SetRequirements(r Requirements) {
	r.Languages = slices.Clone(r.Languages)
	f.MinRequirements = r
}

func (f *CampaignForm) SetDeliverables(formats []string, posts, guidelines string, approvalRequired bool) {
	f.ContentFormat = slices.Clone(formats)
	f.NumberOfPosts = posts
	f.ContentGuidelines = guidelines
	f.ApprovalRequired = approvalRequired
}

func (f *CampaignForm) SetCompensation(kind, amount, productDetails string) {
	f.CompensationType = kind
	f.PaymentAmount = amount
	f.ProductDetails = productDetails
}

func (f *CampaignForm) SetAssets(bannerImageURL, referenceLinks string) {
	f.BannerImageURL = bannerImageURL
	f.ReferenceLinks = referenceLinks
}

// Patch carries the form sections a client changed. Nil sections are kept.
type Patch struct {
	Basics *struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Category     string `json:"category"`
		CampaignType string `json:"campaignType"`
	} `json:"basics,omitempty"`
	Schedule *struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	} `json:"schedule,omitempty"`
	Audience *struct {
		TargetAudience         models.TargetAudience `json:"targetAudience"`
		Platforms              []string              `json:"platforms"`
		NicheMatch             bool                  `json:"nicheMatch"`
		GeographicRestrictions string                `json:"geographicRestrictions"`
	} `json:"audience,omitempty"`
	Requirements *Requirements `json:"minRequirements,omitempty"`
	Deliverables *struct {
		ContentFormat     []string `json:"contentFormat"`
		NumberOfPosts     string   `json:"numberOfPosts"`
		ContentGuidelines string   `json:"contentGuidelines"`
		ApprovalRequired  bool     `json:"approvalRequired"`
	} `json:"deliverables,omitempty"`
	Compensation *struct {
		CompensationType string `json:"compensationType"`
		PaymentAmount    string `json:"paymentAmount"`
		ProductDetails   string `json:"productDetails"`
	} `json:"compensation,omitempty"`
	Assets *struct {
		BannerImageURL string `json:"bannerImageUrl"`
		ReferenceLinks string `json:"referenceLinks"`
	} `json:"assets,omitempty"`
}

func (p Patch) Apply(f *CampaignForm) {
	if b := p.Basics; b != nil {
		f.SetBasics(b.Title, b.Description, b.Category, b.CampaignType)
	}
	if s := p.Schedule; s != nil {
		f.SetSchedule(s.StartDate, s.EndDate)
	}
	if a := p.Audience; a != nil {
		f.SetAudience(a.TargetAudience, a.Platforms, a.NicheMatch, a.GeographicRestrictions)
	}
	if r := p.Requirements; r != nil {
		f.SetRequirements(*r)
	}
	if d := p.Deliverables; d != nil {
		f.SetDeliverables(d.ContentFormat, d.NumberOfPosts, d.ContentGuidelines, d.ApprovalRequired)
	}
	if c := p.Compensation; c != nil {
		f.SetCompensation(c.CompensationType, c.PaymentAmount, c.ProductDetails)
	}
	if a := p.Assets; a != nil {
		f.SetAssets(a.BannerImageURL, a.ReferenceLinks)
	}
	f.Normalize()
}
