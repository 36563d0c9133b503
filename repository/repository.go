// Package repository defines persistence ports for users,
// conversations, and messages. Implementations live in subpackages.
package repository

import (
	"context"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns domain.ErrNotFound when no user matches.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail returns domain.ErrNotFound when no user matches.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername returns domain.ErrNotFound when no user matches.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	Update(ctx context.Context, user *domain.User) error
}

// ConversationRepository persists conversations. Lookups are not
// owner-scoped; ownership is enforced by callers before acting on the
// returned conversation.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) error

	// GetByID returns domain.ErrNotFound when no conversation matches.
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)

	// ListByUser returns the user's conversations ordered by most
	// recently updated.
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]*domain.Conversation, error)

	Update(ctx context.Context, conversation *domain.Conversation) error

	Delete(ctx context.Context, id string) error

	// IncrementMessageCount adds delta to the conversation's message
	// count and refreshes its updated timestamp.
	IncrementMessageCount(ctx context.Context, id string, delta int) error
}

// MessageRepository persists conversation messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error

	// ListByConversation returns messages in creation order.
	ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error)

	// DeleteByConversation removes all messages in a conversation.
	DeleteByConversation(ctx context.Context, conversationID string) error
}
