package llm

import (
	"github.com/tmc/langchaingo/llms"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

// ToMessageContent converts stored messages into the langchaingo chat
// format. Tool results become ToolCallResponse parts so providers can
// correlate them with the originating tool call.
func ToMessageContent(messages []*domain.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case domain.RoleAssistant:
			out = append(out, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		case domain.RoleTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: m.ToolCallID,
						Name:       m.ToolName,
						Content:    m.Content,
					},
				},
			})
		default:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		}
	}
	return out
}
