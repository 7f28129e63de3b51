package agent

import (
	"testing"

	"dayflow/internal/models"
)

func TestAggregatorLastWriteWins(t *testing.T) {
	agg := NewAggregator()
	agg.UpsertIdea(models.Idea{ID: "i1", Content: "v1"})
	agg.UpsertIdea(models.Idea{ID: "i1", Content: "v2"})
	agg.UpsertIdea(models.Idea{ID: "i2", Content: "other"})

	resp := agg.Finalize("done", "", "s1")
	if len(resp.IdeasUpdates) != 2 {
		t.Fatalf("updates = %d, want 2", len(resp.IdeasUpdates))
	}
	if resp.IdeasUpdates[0].Content != "v2" {
		t.Errorf("first update = %q, want latest write for i1", resp.IdeasUpdates[0].Content)
	}
}

func TestAggregatorDeleteCancelsUpsert(t *testing.T) {
	agg := NewAggregator()
	agg.UpsertGoal(models.Goal{ID: "g1", Title: "run"})
	agg.DeleteGoal("g1")

	resp := agg.Finalize("done", "", "")
	if len(resp.GoalsUpdates) != 0 {
		t.Error("deleted goal must not appear as an update")
	}
	if len(resp.GoalsDeletions) != 1 || resp.GoalsDeletions[0] != "g1" {
		t.Errorf("deletions = %v", resp.GoalsDeletions)
	}
}

func TestAggregatorDeleteDeduplicated(t *testing.T) {
	agg := NewAggregator()
	agg.DeleteSchedule("s1")
	agg.DeleteSchedule("s1")

	resp := agg.Finalize("", "", "")
	if len(resp.ScheduleDeletions) != 1 {
		t.Errorf("deletions = %v, want one entry", resp.ScheduleDeletions)
	}
}

func TestAggregatorBioLastWriteWins(t *testing.T) {
	agg := NewAggregator()
	agg.SetBio("first")
	agg.SetBio("second")

	resp := agg.Finalize("", "", "")
	if resp.BioUpdate == nil || *resp.BioUpdate != "second" {
		t.Errorf("bio = %v, want second", resp.BioUpdate)
	}
}

func TestAggregatorEmptyFinalizeShape(t *testing.T) {
	resp := NewAggregator().Finalize("hi", "thinking", "sess")
	if resp.ScheduleUpdates == nil || resp.IdeasUpdates == nil || resp.GoalsUpdates == nil || resp.ResourcesUpdates == nil {
		t.Error("update slices must be non-nil")
	}
	if resp.ScheduleDeletions == nil || resp.IdeasDeletions == nil || resp.GoalsDeletions == nil || resp.ResourcesDeletions == nil {
		t.Error("deletion slices must be non-nil")
	}
	if resp.BioUpdate != nil {
		t.Error("bio must stay nil when never set")
	}
	if resp.Message != "hi" || resp.Thoughts != "thinking" || resp.SessionID != "sess" {
		t.Error("finalize must carry message, thoughts and session id")
	}
}
