package domain

import "time"

// User is an account that owns conversations.
type User struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	Email          string    `json:"email" bson:"email"`
	Username       string    `json:"username" bson:"username"`
	HashedPassword string    `json:"-" bson:"hashed_password"`
	FullName       string    `json:"full_name,omitempty" bson:"full_name,omitempty"`
	IsActive       bool      `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}
