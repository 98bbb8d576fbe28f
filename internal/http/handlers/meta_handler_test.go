package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Tech", "tech"},
		{"Blog Post", "blog-post"},
		{"Commission/Affiliate", "commission-affiliate"},
		{"Free Product/Service", "free-product-service"},
		{"  Odd  spacing ", "odd-spacing"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := slug(tt.in); got != tt.want {
				t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCampaignOptions(t *testing.T) {
	app := fiber.New()
	app.Get("/options", NewMetaHandler().GetCampaignOptions)

	resp, err := app.Test(httptest.NewRequest("GET", "/options", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		OK   bool                    `json:"ok"`
		Data map[string][]MetaOption `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]int{
		"categories":        11,
		"campaignTypes":     6,
		"platforms":         9,
		"contentFormats":    8,
		"languages":         9,
		"compensationTypes": 4,
	}
	for key, n := range want {
		if got := len(body.Data[key]); got != n {
			t.Errorf("%s has %d options, want %d", key, got, n)
		}
	}
}
