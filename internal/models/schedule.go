package models

import "time"

// Priority levels for schedule items
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is one of the accepted priority levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ScheduleItem represents a calendar entry owned by a single user.
// Recurring items carry a restricted RRULE string (FREQ/INTERVAL/BYDAY only);
// occurrence on a given date is computed at read time, never stored.
type ScheduleItem struct {
	ID             string    `bson:"_id" json:"id"`
	UserID         string    `bson:"userId" json:"user_id"`
	Title          string    `bson:"title" json:"title"`
	Description    string    `bson:"description,omitempty" json:"description,omitempty"`
	Priority       *Priority `bson:"priority,omitempty" json:"priority,omitempty"`
	StartTime      time.Time `bson:"startTime" json:"start_time"`
	EndTime        time.Time `bson:"endTime" json:"end_time"`
	AllDay         bool      `bson:"allDay" json:"all_day"`
	RecurrenceRule string    `bson:"recurrenceRule,omitempty" json:"recurrence_rule,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updated_at"`
}

// ScheduleItemPatch is a partial update; only non-nil fields are applied.
type ScheduleItemPatch struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Priority       *Priority  `json:"priority,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	AllDay         *bool      `json:"all_day,omitempty"`
	RecurrenceRule *string    `json:"recurrence_rule,omitempty"`
}

// CreateScheduleItemRequest is the REST body for the dashboard calendar panel.
// Times arrive as client strings ("3:00 PM", "15:00", "1500") and are
// normalized server-side.
type CreateScheduleItemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Date        string   `json:"date"` // YYYY-MM-DD, defaults to today
	StartTime   string   `json:"start_time,omitempty"`
	EndTime     string   `json:"end_time,omitempty"`
	AllDay      bool     `json:"all_day,omitempty"`
	Frequency   string   `json:"frequency,omitempty"` // DAILY, WEEKLY, MONTHLY
	Interval    int      `json:"interval,omitempty"`
	RepeatDays  []string `json:"repeat_days,omitempty"` // day names, e.g. "Monday"
}
