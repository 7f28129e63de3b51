package models

import "time"

// User represents an account in the local auth system.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"` // Argon2id hash, never exposed in API
	Role         string    `bson:"role,omitempty" json:"role,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"created_at"`
	LastLoginAt  time.Time `bson:"lastLoginAt" json:"last_login_at"`
}

// UserResponse is the API-safe projection of a User.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse strips credential fields for API output.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
