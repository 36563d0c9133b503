package chat

import "github.com/tmc/langchaingo/llms"

// Phase tracks where a turn is in its lifecycle.
type Phase string

const (
	PhaseReceived   Phase = "received"
	PhaseValidated  Phase = "validated"
	PhaseGenerating Phase = "generating"
	PhaseToolCall   Phase = "tool_call"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
)

// TurnState is the graph state for one conversation turn. It flows
// through the nodes as the untyped graph state.
type TurnState struct {
	ConversationID string
	UserID         string
	Input          string
	Phase          Phase

	// Messages is the running chat transcript in model format,
	// including tool calls and tool results from this turn.
	Messages []llms.MessageContent

	// PendingCalls are tool calls requested by the last model response
	// that have not been executed yet.
	PendingCalls []llms.ToolCall

	// ToolIterations counts completed generate/execute rounds.
	ToolIterations int

	// Response is the final assistant text once the turn completes.
	Response string

	emit func(Frame)
}
