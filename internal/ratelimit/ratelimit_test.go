package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

func TestAllowPerUser(t *testing.T) {
	l := New(1, time.Hour, 2)
	if !l.Allow("u1") || !l.Allow("u1") {
		t.Fatalf("expected burst of 2")
	}
	if l.Allow("u1") {
		t.Fatalf("expected third call to be limited")
	}
	if !l.Allow("u2") {
		t.Fatalf("other users must have their own bucket")
	}
}

func TestNewClampsInvalidValues(t *testing.T) {
	l := New(0, time.Minute, 0)
	if !l.Allow("u1") {
		t.Fatalf("expected at least one token")
	}
}

func TestMiddleware(t *testing.T) {
	l := New(1, time.Minute, 1)
	app := fiber.New()
	app.Post("/posts", func(c *fiber.Ctx) error {
		c.Locals("user_id", c.Get("X-User"))
		return c.Next()
	}, l.Middleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	send := func(user string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		return resp
	}

	if resp := send("u1"); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected first write to pass")
	}
	resp := send("u1")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") != "60" {
		t.Fatalf("unexpected Retry-After %q", resp.Header.Get("Retry-After"))
	}
	if resp := send("u2"); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected other user to pass")
	}
}

func TestSweepDropsOnlyFullBuckets(t *testing.T) {
	l := New(1, time.Hour, 2)
	l.Allow("busy")
	l.Allow("busy")
	l.users["idle"] = rate.NewLimiter(l.r, l.b)

	dropped, err := l.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if dropped != 1 {
		t.Fatalf("expected one bucket dropped, got %d", dropped)
	}
	if _, ok := l.users["busy"]; !ok {
		t.Fatalf("drained bucket must survive the sweep")
	}
	if l.Allow("busy") {
		t.Fatalf("sweep must not refill a drained bucket")
	}
	if !l.Allow("idle") {
		t.Fatalf("swept key must get a fresh bucket")
	}
}
