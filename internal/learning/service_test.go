package learning

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend-numeneon/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTodayIsStableWithinADay(t *testing.T) {
	morning, err := NewService(fixedClock(time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	evening, _ := NewService(fixedClock(time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)))

	a, b := morning.Today(), evening.Today()
	if len(a) != 6 {
		t.Fatalf("expected one item per category, got %d", len(a))
	}
	for i := range a {
		if a[i].Item.Term != b[i].Item.Term {
			t.Fatalf("pick changed within the day for %s", a[i].Category)
		}
	}
}

func TestTodayCyclesByDayOfYear(t *testing.T) {
	svc, _ := NewService(fixedClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))
	cat, err := svc.Category("bigO")
	if err != nil {
		t.Fatalf("category: %v", err)
	}

	for _, pick := range svc.Today() {
		if pick.Category == "bigO" && pick.Item.Term != cat.Items[1%len(cat.Items)].Term {
			t.Fatalf("expected day-of-year index 1, got %s", pick.Item.Term)
		}
	}

	later, _ := NewService(fixedClock(time.Date(2026, 1, 1+len(cat.Items), 12, 0, 0, 0, time.UTC)))
	for _, pick := range later.Today() {
		if pick.Category == "bigO" && pick.Item.Term != cat.Items[1].Term {
			t.Fatalf("expected the list to wrap around")
		}
	}
}

func TestCategories(t *testing.T) {
	svc, _ := NewService(nil)
	cats := svc.Categories()
	if len(cats) != 6 || cats[0].ID != "techJargon" || cats[0].Items != nil {
		t.Fatalf("unexpected categories %+v", cats)
	}
	if _, err := svc.Category("astrology"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHandlers(t *testing.T) {
	svc, _ := NewService(fixedClock(time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)))
	app := fiber.New()
	RegisterRoutes(app.Group("/learning"), svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/learning/today", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("today status: %v", err)
	}
	var today []DailyItem
	if err := json.NewDecoder(resp.Body).Decode(&today); err != nil || len(today) != 6 {
		t.Fatalf("unexpected today body: %v", err)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/learning/categories/mythology", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("category status: %v", err)
	}
	var cat Category
	if err := json.NewDecoder(resp.Body).Decode(&cat); err != nil || len(cat.Items) == 0 {
		t.Fatalf("expected items")
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/learning/categories/nope", nil))
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found")
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/learning/categories", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("categories status: %v", err)
	}
}
