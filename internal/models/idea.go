package models

import "time"

// Idea is a free-text note captured by the user or the assistant.
type Idea struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"userId" json:"user_id"`
	Title     string    `bson:"title,omitempty" json:"title,omitempty"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// IdeaPatch is a partial update; only non-nil fields are applied.
type IdeaPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}
