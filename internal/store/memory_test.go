package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"dayflow/internal/models"
)

func TestScheduleOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	stores := NewMemoryStores()

	item := &models.ScheduleItem{
		UserID:    "alice",
		Title:     "Dentist",
		StartTime: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC),
		CreatedAt: time.Now(),
	}
	if err := stores.Schedule.Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := stores.Schedule.Get(ctx, item.ID, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner get should return ErrNotFound, got %v", err)
	}

	title := "Hijacked"
	if _, err := stores.Schedule.Update(ctx, item.ID, "bob", &models.ScheduleItemPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner update should return ErrNotFound, got %v", err)
	}

	deleted, err := stores.Schedule.Delete(ctx, item.ID, "bob")
	if err != nil || deleted {
		t.Errorf("cross-owner delete = (%v, %v), want (false, nil)", deleted, err)
	}

	got, err := stores.Schedule.Get(ctx, item.ID, "alice")
	if err != nil {
		t.Fatalf("owner get after cross-owner attempts: %v", err)
	}
	if got.Title != "Dentist" {
		t.Errorf("title = %q, want original", got.Title)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	stores := NewMemoryStores()

	idea := &models.Idea{UserID: "alice", Content: "note", CreatedAt: time.Now()}
	if err := stores.Ideas.Create(ctx, idea); err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := stores.Ideas.Delete(ctx, idea.ID, "alice")
	if err != nil || !deleted {
		t.Fatalf("first delete = (%v, %v), want (true, nil)", deleted, err)
	}
	deleted, err = stores.Ideas.Delete(ctx, idea.ID, "alice")
	if err != nil || deleted {
		t.Errorf("second delete = (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestListOrdering(t *testing.T) {
	ctx := context.Background()
	stores := NewMemoryStores()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		goal := &models.Goal{
			UserID:    "alice",
			Title:     title,
			CreatedAt: base.AddDate(0, 0, i),
		}
		if err := stores.Goals.Create(ctx, goal); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	goals, err := stores.Goals.List(ctx, "alice", "", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goals) != 3 {
		t.Fatalf("len = %d, want 3", len(goals))
	}
	if goals[0].Title != "third" || goals[2].Title != "first" {
		t.Errorf("goals not newest-first: %s, %s, %s", goals[0].Title, goals[1].Title, goals[2].Title)
	}

	// Callers can override both the key and the direction.
	byOldest, err := stores.Goals.List(ctx, "alice", OrderByCreatedAt, true)
	if err != nil {
		t.Fatalf("list ascending: %v", err)
	}
	if byOldest[0].Title != "first" || byOldest[2].Title != "third" {
		t.Errorf("ascending createdAt order: %s, %s, %s", byOldest[0].Title, byOldest[1].Title, byOldest[2].Title)
	}

	byTitle, err := stores.Goals.List(ctx, "alice", OrderByTitle, true)
	if err != nil {
		t.Fatalf("list by title: %v", err)
	}
	if byTitle[0].Title != "first" || byTitle[1].Title != "second" || byTitle[2].Title != "third" {
		t.Errorf("title order: %s, %s, %s", byTitle[0].Title, byTitle[1].Title, byTitle[2].Title)
	}
}

func TestScheduleListSortedByStart(t *testing.T) {
	ctx := context.Background()
	stores := NewMemoryStores()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, h := range []int{15, 9, 12} {
		item := &models.ScheduleItem{
			UserID:    "alice",
			Title:     "slot",
			StartTime: day.Add(time.Duration(h) * time.Hour),
			EndTime:   day.Add(time.Duration(h+1) * time.Hour),
			CreatedAt: time.Now(),
		}
		if err := stores.Schedule.Create(ctx, item); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, err := stores.Schedule.List(ctx, "alice", "", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(items); i++ {
		if items[i].StartTime.Before(items[i-1].StartTime) {
			t.Fatalf("items not sorted by start time: %v", items)
		}
	}
}

func TestGoalProgressClamped(t *testing.T) {
	ctx := context.Background()
	stores := NewMemoryStores()

	goal := &models.Goal{UserID: "alice", Title: "run", Progress: 150, CreatedAt: time.Now()}
	if err := stores.Goals.Create(ctx, goal); err != nil {
		t.Fatalf("create: %v", err)
	}

	over := 130
	updated, err := stores.Goals.Update(ctx, goal.ID, "alice", &models.GoalPatch{Progress: &over})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Progress != 100 {
		t.Errorf("progress = %d, want clamped 100", updated.Progress)
	}

	under := -5
	updated, err = stores.Goals.Update(ctx, goal.ID, "alice", &models.GoalPatch{Progress: &under})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Progress != 0 {
		t.Errorf("progress = %d, want clamped 0", updated.Progress)
	}
}

func TestBioGetEmptyAndSet(t *testing.T) {
	ctx := context.Background()
	stores := NewMemoryStores()

	bio, err := stores.Bio.Get(ctx, "alice")
	if err != nil || bio != "" {
		t.Errorf("Get with no bio = (%q, %v), want empty", bio, err)
	}

	if err := stores.Bio.Set(ctx, "alice", "Runner, early riser."); err != nil {
		t.Fatalf("set: %v", err)
	}
	bio, err = stores.Bio.Get(ctx, "alice")
	if err != nil || bio != "Runner, early riser." {
		t.Errorf("Get after Set = (%q, %v)", bio, err)
	}

	// Full replacement, no merging.
	if err := stores.Bio.Set(ctx, "alice", "Night owl."); err != nil {
		t.Fatalf("set: %v", err)
	}
	bio, _ = stores.Bio.Get(ctx, "alice")
	if bio != "Night owl." {
		t.Errorf("bio = %q, want replacement", bio)
	}
}

func TestResourceDecay(t *testing.T) {
	ctx := context.Background()
	stores := NewMemoryStores()

	old := &models.Resource{
		UserID:         "alice",
		Title:          "stale",
		URL:            "https://example.com/old",
		Category:       models.ResourceCategoryArticle,
		RelevanceScore: 50,
		CreatedAt:      time.Now().AddDate(0, 0, -60),
		UpdatedAt:      time.Now().AddDate(0, 0, -60),
	}
	fresh := &models.Resource{
		UserID:         "alice",
		Title:          "fresh",
		URL:            "https://example.com/new",
		Category:       models.ResourceCategoryArticle,
		RelevanceScore: 50,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	for _, r := range []*models.Resource{old, fresh} {
		if err := stores.Resources.Create(ctx, r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	touched, err := stores.Resources.DecayRelevance(ctx, 30, 10, 10)
	if err != nil {
		t.Fatalf("decay: %v", err)
	}
	if touched != 1 {
		t.Errorf("touched = %d, want 1", touched)
	}

	resources, _ := stores.Resources.List(ctx, "alice", "", false)
	for _, r := range resources {
		switch r.Title {
		case "stale":
			if r.RelevanceScore != 40 {
				t.Errorf("stale score = %d, want 40", r.RelevanceScore)
			}
		case "fresh":
			if r.RelevanceScore != 50 {
				t.Errorf("fresh score = %d, want untouched 50", r.RelevanceScore)
			}
		}
	}
}
