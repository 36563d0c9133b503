package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	user := &domain.User{ID: "u1", Email: "Ada@Example.com", Username: "ada"}
	require.NoError(t, repo.Create(ctx, user))

	byID, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada", byID.Username)

	// Email lookup is case-insensitive.
	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationRepository(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()

	older := &domain.Conversation{ID: "c1", UserID: "u1", Title: "First", UpdatedAt: time.Now().Add(-time.Hour)}
	newer := &domain.Conversation{ID: "c2", UserID: "u1", Title: "Second", UpdatedAt: time.Now()}
	foreign := &domain.Conversation{ID: "c3", UserID: "u2", Title: "Other"}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, foreign))

	// Most recently updated first, scoped to the owner.
	list, err := repo.ListByUser(ctx, "u1", 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
	assert.Equal(t, "c1", list[1].ID)

	list, err = repo.ListByUser(ctx, "u1", 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c1", list[0].ID)

	require.NoError(t, repo.IncrementMessageCount(ctx, "c1", 2))
	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.MessageCount)

	require.NoError(t, repo.Delete(ctx, "c1"))
	_, err = repo.GetByID(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "c1"), domain.ErrNotFound)
}

func TestConversationUpdate(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()

	conversation := &domain.Conversation{ID: "c1", UserID: "u1", Title: "Before"}
	require.NoError(t, repo.Create(ctx, conversation))

	conversation.Title = "After"
	require.NoError(t, repo.Update(ctx, conversation))

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.False(t, got.UpdatedAt.IsZero())

	missing := &domain.Conversation{ID: "nope"}
	assert.ErrorIs(t, repo.Update(ctx, missing), domain.ErrNotFound)
}

func TestMessageRepository(t *testing.T) {
	repo := NewMessageRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Message{ID: "m1", ConversationID: "c1", Role: domain.RoleUser, Content: "hi"}))
	require.NoError(t, repo.Create(ctx, &domain.Message{ID: "m2", ConversationID: "c1", Role: domain.RoleAssistant, Content: "hello"}))
	require.NoError(t, repo.Create(ctx, &domain.Message{ID: "m3", ConversationID: "c2", Role: domain.RoleUser, Content: "elsewhere"}))

	messages, err := repo.ListByConversation(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)

	require.NoError(t, repo.DeleteByConversation(ctx, "c1"))
	messages, err = repo.ListByConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, messages)

	messages, err = repo.ListByConversation(ctx, "c2")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}
