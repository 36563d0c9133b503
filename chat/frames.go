package chat

// FrameType identifies a streaming frame emitted during a turn.
type FrameType string

const (
	// FrameToken carries an incremental piece of the assistant reply.
	FrameToken FrameType = "token"
	// FrameToolStart announces that a tool call is about to run.
	FrameToolStart FrameType = "tool_start"
	// FrameToolEnd carries the result of a finished tool call.
	FrameToolEnd FrameType = "tool_end"
	// FrameComplete terminates a successful turn.
	FrameComplete FrameType = "complete"
	// FrameError terminates a failed turn.
	FrameError FrameType = "error"
)

// Frame is one unit of the turn stream. A turn emits zero or more token
// frames, zero or more tool_start/tool_end pairs, and exactly one
// terminal complete or error frame.
type Frame struct {
	Type           FrameType `json:"type"`
	Content        string    `json:"content,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	MessageID      string    `json:"message_id,omitempty"`
	Tool           string    `json:"tool,omitempty"`
	ToolInput      string    `json:"tool_input,omitempty"`
	Code           string    `json:"code,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Terminal reports whether the frame ends the turn stream.
func (f Frame) Terminal() bool {
	return f.Type == FrameComplete || f.Type == FrameError
}
