package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"dayflow/internal/store"
)

func newBioApp(t *testing.T, userID string) *fiber.App {
	t.Helper()
	stores := store.NewMemoryStores()
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	h := NewBioHandler(stores.Bio)
	app.Get("/api/bio", h.Get)
	app.Put("/api/bio", h.Put)
	return app
}

func TestBioRoundTrip(t *testing.T) {
	app := newBioApp(t, "alice")

	get := func() string {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/bio", nil))
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		var out struct {
			Bio string `json:"bio"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out.Bio
	}

	if bio := get(); bio != "" {
		t.Fatalf("fresh user bio = %q, want empty", bio)
	}

	body := []byte(`{"bio":"Vegetarian, works from home."}`)
	req := httptest.NewRequest("PUT", "/api/bio", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if bio := get(); bio != "Vegetarian, works from home." {
		t.Errorf("bio = %q after put", bio)
	}
}
