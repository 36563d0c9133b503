// Package mongo provides MongoDB-backed repositories.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
	"github.com/pablo-lozano-martin/genesis-sub005/repository"
)

const (
	usersCollection         = "users"
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
)

// Repositories bundles the three MongoDB repositories over one
// database.
type Repositories struct {
	Users         *UserRepository
	Conversations *ConversationRepository
	Messages      *MessageRepository
}

// New creates the repositories and ensures their indexes.
func New(ctx context.Context, db *mongo.Database) (*Repositories, error) {
	users := &UserRepository{collection: db.Collection(usersCollection)}
	conversations := &ConversationRepository{collection: db.Collection(conversationsCollection)}
	messages := &MessageRepository{collection: db.Collection(messagesCollection)}

	if err := ensureIndexes(ctx, users, conversations, messages); err != nil {
		return nil, err
	}

	return &Repositories{
		Users:         users,
		Conversations: conversations,
		Messages:      messages,
	}, nil
}

func ensureIndexes(ctx context.Context, users *UserRepository, conversations *ConversationRepository, messages *MessageRepository) error {
	_, err := users.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user index: %w", err)
	}

	_, err = conversations.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create conversation index: %w", err)
	}

	_, err = messages.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create message index: %w", err)
	}
	return nil
}

// UserRepository is a MongoDB repository.UserRepository.
type UserRepository struct {
	collection *mongo.Collection
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// ConversationRepository is a MongoDB
// repository.ConversationRepository.
type ConversationRepository struct {
	collection *mongo.Collection
}

var _ repository.ConversationRepository = (*ConversationRepository)(nil)

func (r *ConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	if _, err := r.collection.InsertOne(ctx, conversation); err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conversation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return &conversation, nil
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID string, skip, limit int) ([]*domain.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	conversations := []*domain.Conversation{}
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return conversations, nil
}

func (r *ConversationRepository) Update(ctx context.Context, conversation *domain.Conversation) error {
	conversation.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": conversation.ID}, conversation)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ConversationRepository) IncrementMessageCount(ctx context.Context, id string, delta int) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"message_count": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to update message count: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MessageRepository is a MongoDB repository.MessageRepository.
type MessageRepository struct {
	collection *mongo.Collection
}

var _ repository.MessageRepository = (*MessageRepository)(nil)

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []*domain.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) DeleteByConversation(ctx context.Context, conversationID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"conversation_id": conversationID}); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}
