package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"dayflow/internal/models"
	"dayflow/internal/store"
)

func newScheduleApp(t *testing.T, userID string) (*fiber.App, *store.Stores) {
	t.Helper()
	stores := store.NewMemoryStores()
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	h := NewScheduleHandler(stores.Schedule)
	app.Get("/api/schedule", h.List)
	app.Post("/api/schedule", h.Create)
	app.Patch("/api/schedule/:id", h.Update)
	app.Delete("/api/schedule/:id", h.Delete)
	return app, stores
}

func TestScheduleCreateNormalizesTimes(t *testing.T) {
	app, _ := newScheduleApp(t, "alice")

	body, _ := json.Marshal(map[string]interface{}{
		"title":      "Dentist",
		"date":       "2026-03-10",
		"start_time": "3:00 PM",
	})
	req := httptest.NewRequest("POST", "/api/schedule", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var out struct {
		Item     models.ScheduleItem `json:"item"`
		Warnings []string            `json:"warnings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Item.StartTime.Hour() != 15 {
		t.Errorf("start hour = %d, want 15", out.Item.StartTime.Hour())
	}
	if out.Item.EndTime.Hour() != 16 {
		t.Errorf("end hour = %d, want 16 (one hour default)", out.Item.EndTime.Hour())
	}
	if len(out.Warnings) == 0 {
		t.Error("expected a warning for the defaulted end time")
	}
}

func TestScheduleCreateRequiresTitle(t *testing.T) {
	app, _ := newScheduleApp(t, "alice")

	body := []byte(`{"date":"2026-03-10"}`)
	req := httptest.NewRequest("POST", "/api/schedule", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestScheduleListFiltersByDate(t *testing.T) {
	app, _ := newScheduleApp(t, "alice")

	create := func(title, date, freq string, days []string) {
		body, _ := json.Marshal(map[string]interface{}{
			"title":       title,
			"date":        date,
			"start_time":  "09:00",
			"end_time":    "10:00",
			"frequency":   freq,
			"repeat_days": days,
		})
		req := httptest.NewRequest("POST", "/api/schedule", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil || resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("create %q failed: %v status=%d", title, err, resp.StatusCode)
		}
	}

	// 2026-03-10 is a Tuesday.
	create("one-off", "2026-03-10", "", nil)
	create("standup", "2026-03-02", "WEEKLY", []string{"Monday", "Wednesday"})
	create("other day", "2026-03-11", "", nil)

	req := httptest.NewRequest("GET", "/api/schedule?date=2026-03-11", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var out struct {
		Items []models.ScheduleItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Wednesday the 11th: the one-off for that day plus the weekly standup.
	if len(out.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(out.Items))
	}
	titles := map[string]bool{}
	for _, item := range out.Items {
		titles[item.Title] = true
	}
	if !titles["other day"] || !titles["standup"] {
		t.Errorf("unexpected items on 2026-03-11: %v", titles)
	}
}

func TestScheduleUnauthenticated(t *testing.T) {
	app, _ := newScheduleApp(t, "")

	req := httptest.NewRequest("GET", "/api/schedule", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestScheduleDeleteUnknownIDReturns404(t *testing.T) {
	app, _ := newScheduleApp(t, "alice")

	req := httptest.NewRequest("DELETE", "/api/schedule/nope", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
