package models

import "time"

// Goal tracks a user objective with manual or assistant-driven progress.
//
// An earlier deployment modeled this concept as a "habit"
// (frequency/target_days/streak); that shape is handled only by the
// one-shot migration in scripts/migrate_habits.go.
type Goal struct {
	ID          string     `bson:"_id" json:"id"`
	UserID      string     `bson:"userId" json:"user_id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Category    string     `bson:"category,omitempty" json:"category,omitempty"`
	TargetDate  *time.Time `bson:"targetDate,omitempty" json:"target_date,omitempty"`
	Progress    int        `bson:"progress" json:"progress"` // 0-100
	CreatedAt   time.Time  `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updated_at"`
}

// GoalPatch is a partial update; only non-nil fields are applied.
type GoalPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	Progress    *int       `json:"progress,omitempty"`
}

// ClampProgress forces p into the valid 0-100 range.
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
