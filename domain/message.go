package domain

import "time"

// Role identifies the author of a message within a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is a single entry in a conversation's history.
type Message struct {
	ID             string         `json:"id" bson:"_id,omitempty"`
	ConversationID string         `json:"conversation_id" bson:"conversation_id"`
	Role           Role           `json:"role" bson:"role"`
	Content        string         `json:"content" bson:"content"`
	ToolCallID     string         `json:"tool_call_id,omitempty" bson:"tool_call_id,omitempty"`
	ToolName       string         `json:"tool_name,omitempty" bson:"tool_name,omitempty"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	Metadata       map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
}
