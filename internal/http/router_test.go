package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sponsorconnect/backend/internal/auth"
	"github.com/sponsorconnect/backend/internal/config"
	"github.com/sponsorconnect/backend/internal/drafts"
	"github.com/sponsorconnect/backend/internal/events"
	"github.com/sponsorconnect/backend/internal/http/handlers"
	"github.com/sponsorconnect/backend/internal/metrics"
	"github.com/sponsorconnect/backend/internal/repositories/memstore"
	"github.com/sponsorconnect/backend/internal/services"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log := zap.NewNop()
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTExpiration:    time.Hour,
		CORSAllowOrigins: "*",
		DefaultPageSize:  6,
		MaxBannerBytes:   1 << 20,
	}
	store := memstore.New()
	bus := events.NewMemoryBus()
	sessions := auth.NewMemorySessionStore()
	m := metrics.New()
	autosaver := drafts.NewAutosaver(drafts.NewMemoryStore(), time.Hour, time.Hour, log)

	accountService := services.NewAccountService(store.Accounts(), sessions, autosaver, store.Audit(), cfg, log)
	campaignService := services.NewCampaignService(store.Campaigns(), store.Audit(), autosaver, bus, m, cfg.DefaultPageSize, log)
	applicationService := services.NewApplicationService(store.Applications(), store.Campaigns(), store.Accounts(), store.CreatorProfiles(), store.Audit(), bus, m, cfg.DefaultPageSize, log)
	profileService := services.NewCreatorProfileService(store.CreatorProfiles(), store.Accounts(), store.Audit(), log)

	app := fiber.New()
	SetupRouter(app, cfg, log, nil, sessions, m,
		handlers.NewAuthHandler(accountService, log),
		handlers.NewCampaignHandler(campaignService, nil, cfg, log),
		handlers.NewApplicationHandler(applicationService, log),
		handlers.NewDraftHandler(autosaver, log),
		handlers.NewCreatorHandler(profileService, log),
		handlers.NewWSHub(cfg, sessions, bus, log),
	)
	return app
}

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func signup(t *testing.T, app *fiber.App, name, userType string) string {
	t.Helper()
	status, env := call(t, app, "POST", "/api/auth/signup", "", map[string]any{
		"name":     name,
		"email":    name + "@example.com",
		"password": "correct horse",
		"userType": userType,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("signup %s: status %d (%s)", name, status, env.Error)
	}
	return decode[struct {
		Token string `json:"token"`
	}](t, env).Token
}

var campaignBody = map[string]any{
	"title":            "Headphones launch",
	"description":      "<p>Review our headphones</p>",
	"category":         "Tech",
	"campaignType":     "Product Review",
	"startDate":        "2026-06-01",
	"endDate":          "2026-06-30",
	"platforms":        []string{"YouTube"},
	"numberOfPosts":    "2",
	"compensationType": "Fixed Payment",
	"paymentAmount":    "500",
}

type campaignView struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Applicants int    `json:"applicants"`
}

type pageView struct {
	Total int `json:"total"`
	Items []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"items"`
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	if status, _ := call(t, app, "GET", "/health", "", nil); status != fiber.StatusOK {
		t.Errorf("/health status = %d", status)
	}
	if status, _ := call(t, app, "GET", "/metrics", "", nil); status != fiber.StatusOK {
		t.Errorf("/metrics status = %d", status)
	}
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t)
	status, env := call(t, app, "GET", "/api/campaigns", "", nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if env.Error == "" {
		t.Error("expected error message")
	}

	if status, _ := call(t, app, "GET", "/api/campaigns", "not-a-jwt", nil); status != fiber.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app, "acme", "brand")

	if status, _ := call(t, app, "GET", "/api/auth/profile", token, nil); status != fiber.StatusOK {
		t.Fatalf("profile status = %d", status)
	}
	if status, _ := call(t, app, "POST", "/api/auth/logout", token, nil); status != fiber.StatusOK {
		t.Fatalf("logout status = %d", status)
	}
	if status, env := call(t, app, "GET", "/api/auth/profile", token, nil); status != fiber.StatusUnauthorized {
		t.Fatalf("after logout status = %d (%s), want 401", status, env.Error)
	}
}

func TestMarketplaceFlow(t *testing.T) {
	app := newTestApp(t)
	brand := signup(t, app, "acme", "brand")
	creator := signup(t, app, "alex", "creator")

	status, env := call(t, app, "POST", "/api/campaigns", brand, campaignBody)
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d (%s)", status, env.Error)
	}
	campaign := decode[campaignView](t, env)
	if campaign.Status != "active" {
		t.Fatalf("status = %q, want active", campaign.Status)
	}

	if status, _ := call(t, app, "POST", "/api/campaigns", creator, campaignBody); status != fiber.StatusForbidden {
		t.Errorf("creator create status = %d, want 403", status)
	}

	status, env = call(t, app, "GET", "/api/campaigns/all", creator, nil)
	if status != fiber.StatusOK {
		t.Fatalf("browse status = %d", status)
	}
	if page := decode[pageView](t, env); page.Total != 1 {
		t.Fatalf("browse total = %d, want 1", page.Total)
	}

	apply := map[string]any{"platform": "YouTube", "followers": 12000, "message": "hi"}
	status, env = call(t, app, "POST", "/api/campaigns/"+campaign.ID+"/apply", creator, apply)
	if status != fiber.StatusCreated {
		t.Fatalf("apply status = %d (%s)", status, env.Error)
	}
	application := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, env)
	if application.Status != "pending" {
		t.Errorf("application status = %q, want pending", application.Status)
	}

	if status, _ := call(t, app, "POST", "/api/campaigns/"+campaign.ID+"/apply", creator, apply); status != fiber.StatusConflict {
		t.Errorf("duplicate apply status = %d, want 409", status)
	}

	status, env = call(t, app, "PATCH", "/api/applications/"+application.ID+"/status", brand, map[string]string{"status": "approved"})
	if status != fiber.StatusOK {
		t.Fatalf("approve status = %d (%s)", status, env.Error)
	}
	status, _ = call(t, app, "PUT", "/api/applications/"+application.ID+"/status", brand, map[string]string{"status": "shortlisted"})
	if status != fiber.StatusConflict {
		t.Errorf("approved -> shortlisted status = %d, want 409", status)
	}

	status, env = call(t, app, "GET", "/api/campaigns/"+campaign.ID+"/approved", brand, nil)
	if status != fiber.StatusOK {
		t.Fatalf("approved list status = %d", status)
	}
	if page := decode[pageView](t, env); page.Total != 1 || page.Items[0].Status != "approved" {
		t.Errorf("approved page = %+v", page)
	}

	status, env = call(t, app, "GET", "/api/campaigns/"+campaign.ID, brand, nil)
	if status != fiber.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	if got := decode[campaignView](t, env); got.Applicants != 1 {
		t.Errorf("applicants = %d, want 1", got.Applicants)
	}

	status, env = call(t, app, "GET", "/api/applications", creator, nil)
	if status != fiber.StatusOK {
		t.Fatalf("creator applications status = %d", status)
	}
	if page := decode[pageView](t, env); page.Total != 1 {
		t.Errorf("creator applications total = %d, want 1", page.Total)
	}

	status, env = call(t, app, "PUT", "/api/campaigns/"+campaign.ID+"/complete", brand, nil)
	if status != fiber.StatusOK {
		t.Fatalf("complete status = %d (%s)", status, env.Error)
	}
	if status, _ := call(t, app, "PUT", "/api/campaigns/"+campaign.ID+"/cancel", brand, nil); status != fiber.StatusConflict {
		t.Errorf("cancel completed status = %d, want 409", status)
	}
}

func TestNotFoundAndBadID(t *testing.T) {
	app := newTestApp(t)
	brand := signup(t, app, "acme", "brand")

	if status, _ := call(t, app, "GET", "/api/campaigns/not-a-uuid", brand, nil); status != fiber.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", status)
	}
	if status, _ := call(t, app, "GET", "/api/campaigns/6f1c9a52-7a47-4f5e-9a55-0c1f6f0c2b11", brand, nil); status != fiber.StatusNotFound {
		t.Errorf("missing status = %d, want 404", status)
	}
}

func TestDraftEndpoints(t *testing.T) {
	app := newTestApp(t)
	brand := signup(t, app, "acme", "brand")
	creator := signup(t, app, "alex", "creator")

	status, env := call(t, app, "GET", "/api/campaigns/draft", brand, nil)
	if status != fiber.StatusOK {
		t.Fatalf("get draft status = %d (%s)", status, env.Error)
	}

	status, env = call(t, app, "PUT", "/api/campaigns/draft?flush=true", brand, map[string]any{"title": "Work in progress"})
	if status != fiber.StatusOK {
		t.Fatalf("put draft status = %d (%s)", status, env.Error)
	}
	if saved := decode[struct {
		Saved bool `json:"saved"`
	}](t, env); !saved.Saved {
		t.Error("expected flush to save the draft")
	}

	status, env = call(t, app, "GET", "/api/campaigns/draft", brand, nil)
	if status != fiber.StatusOK {
		t.Fatalf("reload status = %d", status)
	}
	if form := decode[struct {
		Title string `json:"title"`
	}](t, env); form.Title != "Work in progress" {
		t.Errorf("title = %q", form.Title)
	}

	if status, _ := call(t, app, "DELETE", "/api/campaigns/draft", brand, nil); status != fiber.StatusOK {
		t.Errorf("delete draft status = %d", status)
	}
	if status, _ := call(t, app, "GET", "/api/campaigns/draft", creator, nil); status != fiber.StatusForbidden {
		t.Errorf("creator draft status = %d, want 403", status)
	}
}

func TestBannerUploadWithoutStorage(t *testing.T) {
	app := newTestApp(t)
	brand := signup(t, app, "acme", "brand")
	_, env := call(t, app, "POST", "/api/campaigns", brand, campaignBody)
	campaign := decode[campaignView](t, env)

	if status, _ := call(t, app, "POST", "/api/campaigns/"+campaign.ID+"/banner", brand, nil); status != fiber.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", status)
	}
}

func TestCreatorProfiles(t *testing.T) {
	app := newTestApp(t)
	brand := signup(t, app, "acme", "brand")
	creator := signup(t, app, "alex", "creator")

	_, env := call(t, app, "GET", "/api/auth/profile", creator, nil)
	creatorID := decode[struct {
		ID string `json:"id"`
	}](t, env).ID

	profile := map[string]any{
		"platform":      "YouTube",
		"handle":        "@alexreviews",
		"channelUrl":    "https://youtube.com/@alexreviews",
		"followers":     "12.5K",
		"views":         "1.2M",
		"avgEngagement": 4.5,
		"topTopics":     []string{"audio", "tech"},
	}
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{"creator saves", "POST", "/api/creators/me/profile", creator, profile, fiber.StatusOK},
		{"brand cannot save", "POST", "/api/creators/me/profile", brand, profile, fiber.StatusForbidden},
		{"negative followers", "POST", "/api/creators/me/profile", creator, map[string]any{"platform": "YouTube", "handle": "x", "followers": "-5"}, fiber.StatusBadRequest},
		{"engagement over 100", "POST", "/api/creators/me/profile", creator, map[string]any{"platform": "YouTube", "handle": "x", "avgEngagement": 140}, fiber.StatusBadRequest},
		{"creator reads own", "GET", "/api/creators/me/profile", creator, nil, fiber.StatusOK},
		{"brand reads creator", "GET", "/api/creators/" + creatorID + "/profile", brand, nil, fiber.StatusOK},
		{"creator cannot browse creators", "GET", "/api/creators/" + creatorID + "/profile", creator, nil, fiber.StatusForbidden},
		{"unknown creator", "GET", "/api/creators/6f1c9a52-7a47-4f5e-9a55-0c1f6f0c2b11/profile", brand, nil, fiber.StatusNotFound},
		{"bad id", "GET", "/api/creators/nope/profile", brand, nil, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, app, tt.method, tt.path, tt.token, tt.body)
			if status != tt.status {
				t.Errorf("status = %d (%s), want %d", status, env.Error, tt.status)
			}
		})
	}

	_, env = call(t, app, "GET", "/api/creators/"+creatorID+"/profile", brand, nil)
	profiles := decode[[]struct {
		Platform string `json:"platform"`
		Latest   struct {
			Followers int64    `json:"followers"`
			Views     int64    `json:"views"`
			TopTopics []string `json:"topTopics"`
		} `json:"latest"`
	}](t, env)
	if len(profiles) != 1 || profiles[0].Platform != "youtube" {
		t.Fatalf("profiles = %+v", profiles)
	}
	if got := profiles[0].Latest; got.Followers != 12500 || got.Views != 1200000 || len(got.TopTopics) != 2 {
		t.Errorf("latest snapshot = %+v", got)
	}

	// Apply without metrics picks up the snapshot.
	_, env = call(t, app, "POST", "/api/campaigns", brand, campaignBody)
	campaign := decode[campaignView](t, env)
	status, env := call(t, app, "POST", "/api/campaigns/"+campaign.ID+"/apply", creator, map[string]any{"platform": "YouTube"})
	if status != fiber.StatusCreated {
		t.Fatalf("apply status = %d (%s)", status, env.Error)
	}
	application := decode[struct {
		Followers int64 `json:"followers"`
		Metrics   *struct {
			Followers  int64   `json:"followers"`
			Engagement float64 `json:"engagement"`
		} `json:"metrics"`
	}](t, env)
	if application.Followers != 12500 || application.Metrics == nil || application.Metrics.Engagement != 4.5 {
		t.Errorf("application = %+v, want snapshot values", application)
	}
}
