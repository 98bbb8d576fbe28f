package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newLimitedApp(t *testing.T, limit int) *fiber.App {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	app := fiber.New()
	app.Use(RequestIDMiddleware())
	// stands in for AuthMiddleware: X-Test-User becomes the account id
	app.Use(func(c *fiber.Ctx) error {
		if id, err := uuid.Parse(c.Get("X-Test-User")); err == nil {
			c.Locals(CtxUserID, id)
		}
		return c.Next()
	})
	group := app.Group("/api", RateLimitMiddleware(rdb, limit, time.Minute))
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
	group.Get("/campaigns", ok)
	group.Get("/campaigns/:id", ok)
	return app
}

func hit(t *testing.T, app *fiber.App, path, user string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp.StatusCode
}

func TestRateLimitPerPath(t *testing.T) {
	app := newLimitedApp(t, 2)

	for i := 0; i < 2; i++ {
		if got := hit(t, app, "/api/campaigns", ""); got != fiber.StatusNoContent {
			t.Fatalf("request %d status = %d", i+1, got)
		}
	}
	if got := hit(t, app, "/api/campaigns", ""); got != fiber.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", got)
	}
	if got := hit(t, app, "/api/campaigns/6f1c9a52-7a47-4f5e-9a55-0c1f6f0c2b11", ""); got != fiber.StatusNoContent {
		t.Errorf("other path status = %d, want its own bucket", got)
	}
}

func TestRateLimitPerAccount(t *testing.T) {
	app := newLimitedApp(t, 1)
	alice, bob := uuid.NewString(), uuid.NewString()

	if got := hit(t, app, "/api/campaigns", alice); got != fiber.StatusNoContent {
		t.Fatalf("alice status = %d", got)
	}
	if got := hit(t, app, "/api/campaigns", alice); got != fiber.StatusTooManyRequests {
		t.Errorf("alice second status = %d, want 429", got)
	}
	// same client address, different account
	if got := hit(t, app, "/api/campaigns", bob); got != fiber.StatusNoContent {
		t.Errorf("bob status = %d, want own bucket", got)
	}
	if got := hit(t, app, "/api/campaigns", ""); got != fiber.StatusNoContent {
		t.Errorf("anonymous status = %d, want IP bucket", got)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	app := fiber.New()
	app.Get("/", RateLimitMiddleware(rdb, 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	for i := 0; i < 3; i++ {
		if got := hit(t, app, "/", ""); got != fiber.StatusNoContent {
			t.Fatalf("request %d status = %d with redis down", i+1, got)
		}
	}
}
