// Package memory provides in-memory repositories for tests and local
// development without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
	"github.com/pablo-lozano-martin/genesis-sub005/repository"
)

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates an empty user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *user
	copied.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = &copied
	return nil
}

// ConversationRepository is an in-memory
// repository.ConversationRepository.
type ConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
}

var _ repository.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates an empty conversation repository.
func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{conversations: make(map[string]*domain.Conversation)}
}

func (r *ConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *conversation
	r.conversations[conversation.ID] = &copied
	return nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *conversation
	return &copied, nil
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID string, skip, limit int) ([]*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []*domain.Conversation
	for _, conversation := range r.conversations {
		if conversation.UserID == userID {
			copied := *conversation
			owned = append(owned, &copied)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].UpdatedAt.After(owned[j].UpdatedAt)
	})

	if skip >= len(owned) {
		return []*domain.Conversation{}, nil
	}
	owned = owned[skip:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (r *ConversationRepository) Update(ctx context.Context, conversation *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[conversation.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *conversation
	copied.UpdatedAt = time.Now().UTC()
	r.conversations[conversation.ID] = &copied
	return nil
}

func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.conversations, id)
	return nil
}

func (r *ConversationRepository) IncrementMessageCount(ctx context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return domain.ErrNotFound
	}
	conversation.MessageCount += delta
	conversation.UpdatedAt = time.Now().UTC()
	return nil
}

// MessageRepository is an in-memory repository.MessageRepository.
type MessageRepository struct {
	mu             sync.RWMutex
	byConversation map[string][]*domain.Message
}

var _ repository.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates an empty message repository.
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{byConversation: make(map[string][]*domain.Message)}
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *message
	r.byConversation[message.ConversationID] = append(r.byConversation[message.ConversationID], &copied)
	return nil
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.byConversation[conversationID]
	messages := make([]*domain.Message, 0, len(stored))
	for _, message := range stored {
		copied := *message
		messages = append(messages, &copied)
	}
	return messages, nil
}

func (r *MessageRepository) DeleteByConversation(ctx context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byConversation, conversationID)
	return nil
}
