package models

import "time"

// UserBio is the single free-text biography the assistant maintains per
// user. Updates fully replace the prior value; there is no versioning.
type UserBio struct {
	UserID    string    `bson:"_id" json:"user_id"`
	Bio       string    `bson:"bio" json:"bio"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}
