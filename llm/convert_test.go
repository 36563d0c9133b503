package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

func TestToMessageContent(t *testing.T) {
	messages := []*domain.Message{
		{Role: domain.RoleSystem, Content: "You are helpful."},
		{Role: domain.RoleUser, Content: "What is 2+2?"},
		{Role: domain.RoleAssistant, Content: "Let me check."},
		{Role: domain.RoleTool, Content: "4", ToolCallID: "call-1", ToolName: "add"},
	}

	converted := ToMessageContent(messages)
	require.Len(t, converted, 4)

	assert.Equal(t, llms.ChatMessageTypeSystem, converted[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, converted[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, converted[2].Role)
	assert.Equal(t, llms.ChatMessageTypeTool, converted[3].Role)

	resp, ok := converted[3].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call-1", resp.ToolCallID)
	assert.Equal(t, "add", resp.Name)
	assert.Equal(t, "4", resp.Content)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider")
}
