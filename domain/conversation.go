package domain

import "time"

// Conversation groups messages exchanged between one user and the
// assistant. Its ID doubles as the turn engine's thread ID, so deleting
// a conversation must also clear the thread's checkpoints.
type Conversation struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	UserID       string    `json:"user_id" bson:"user_id"`
	Title        string    `json:"title" bson:"title"`
	MessageCount int       `json:"message_count" bson:"message_count"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// DefaultConversationTitle is used when a conversation is created
// without an explicit title.
const DefaultConversationTitle = "New Conversation"

// MaxTitleLength bounds conversation titles.
const MaxTitleLength = 200
