// Package chat runs conversation turns. A turn takes the user's input
// through a small state graph (validate, generate, execute tools, repeat
// until the model answers), streams frames to the caller, and persists
// the resulting messages and a checkpoint.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
	"github.com/pablo-lozano-martin/genesis-sub005/graph"
	"github.com/pablo-lozano-martin/genesis-sub005/llm"
	"github.com/pablo-lozano-martin/genesis-sub005/log"
	"github.com/pablo-lozano-martin/genesis-sub005/repository"
	"github.com/pablo-lozano-martin/genesis-sub005/store"
	"github.com/pablo-lozano-martin/genesis-sub005/tool"
)

const (
	nodeProcessInput = "process_input"
	nodeCallLLM      = "call_llm"
	nodeTools        = "tools"

	defaultMaxToolIterations = 5
	defaultMaxInputBytes     = 32 * 1024
	frameBuffer              = 64
)

// iterationLimitReply is sent when the model keeps requesting tools past
// the iteration budget.
const iterationLimitReply = "I reached the tool call limit for this message. Here is what I have so far; please ask again if you need more."

// Options configures an Engine.
type Options struct {
	Model         llms.Model
	Executor      *tool.Executor
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	Checkpoints   store.CheckpointStore
	Logger        log.Logger

	// SystemPrompt is prepended to every turn's transcript when set.
	SystemPrompt string

	// MaxToolIterations bounds generate/execute rounds per turn.
	// Defaults to 5.
	MaxToolIterations int

	// MaxInputBytes rejects user input larger than this before any
	// model call. Defaults to 32 KiB.
	MaxInputBytes int
}

// Engine executes conversation turns. A conversation runs at most one
// turn at a time; concurrent turns are rejected with
// domain.ErrTurnInProgress.
type Engine struct {
	model             llms.Model
	executor          *tool.Executor
	conversations     repository.ConversationRepository
	messages          repository.MessageRepository
	checkpoints       store.CheckpointStore
	logger            log.Logger
	systemPrompt      string
	maxToolIterations int
	maxInputBytes     int

	runnable *graph.Runnable

	mu     sync.Mutex
	active map[string]struct{}
}

// NewEngine builds the turn graph and returns a ready engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Model == nil {
		return nil, errors.New("chat: model is required")
	}
	if opts.Conversations == nil || opts.Messages == nil {
		return nil, errors.New("chat: repositories are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Nop{}
	}
	maxIterations := opts.MaxToolIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxToolIterations
	}
	maxInput := opts.MaxInputBytes
	if maxInput <= 0 {
		maxInput = defaultMaxInputBytes
	}

	e := &Engine{
		model:             opts.Model,
		executor:          opts.Executor,
		conversations:     opts.Conversations,
		messages:          opts.Messages,
		checkpoints:       opts.Checkpoints,
		logger:            logger,
		systemPrompt:      opts.SystemPrompt,
		maxToolIterations: maxIterations,
		maxInputBytes:     maxInput,
		active:            make(map[string]struct{}),
	}

	runnable, err := e.buildGraph()
	if err != nil {
		return nil, err
	}
	e.runnable = runnable
	return e, nil
}

func (e *Engine) buildGraph() (*graph.Runnable, error) {
	g := graph.NewStateGraph()

	g.AddNode(nodeProcessInput, "Validate input and assemble the transcript", e.processInput)
	g.AddNode(nodeCallLLM, "Generate the assistant response", e.callLLM)
	g.AddNode(nodeTools, "Execute requested tool calls", e.runTools)

	g.SetEntryPoint(nodeProcessInput)
	g.AddEdge(nodeProcessInput, nodeCallLLM)
	g.AddConditionalEdge(nodeCallLLM, func(ctx context.Context, state any) string {
		if state.(*TurnState).Phase == PhaseToolCall {
			return nodeTools
		}
		return graph.END
	})
	g.AddEdge(nodeTools, nodeCallLLM)

	return g.Compile()
}

// RunTurn starts a turn on the conversation and returns its frame
// stream. The channel is closed after the terminal frame. The caller
// must have verified conversation ownership.
func (e *Engine) RunTurn(ctx context.Context, conversation *domain.Conversation, input string) (<-chan Frame, error) {
	if err := e.acquire(conversation.ID); err != nil {
		return nil, err
	}

	frames := make(chan Frame, frameBuffer)
	go func() {
		defer e.release(conversation.ID)
		defer close(frames)
		e.executeTurn(ctx, conversation, input, frames)
	}()
	return frames, nil
}

func (e *Engine) acquire(conversationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.active[conversationID]; busy {
		return domain.ErrTurnInProgress
	}
	e.active[conversationID] = struct{}{}
	return nil
}

func (e *Engine) release(conversationID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, conversationID)
}

func (e *Engine) executeTurn(ctx context.Context, conversation *domain.Conversation, input string, frames chan<- Frame) {
	emit := func(f Frame) {
		select {
		case frames <- f:
		case <-ctx.Done():
		}
	}

	history, err := e.messages.ListByConversation(ctx, conversation.ID)
	if err != nil {
		e.logger.Error("turn %s: failed to load history: %v", conversation.ID, err)
		emit(errorFrame(conversation.ID, err))
		return
	}

	state := &TurnState{
		ConversationID: conversation.ID,
		UserID:         conversation.UserID,
		Input:          input,
		Phase:          PhaseReceived,
		Messages:       llm.ToMessageContent(history),
		emit:           emit,
	}

	result, err := e.runnable.InvokeWithConfig(ctx, state, &graph.Config{ThreadID: conversation.ID})
	if err != nil {
		state.Phase = PhaseFailed
		e.logger.Error("turn %s: %v", conversation.ID, err)
		emit(errorFrame(conversation.ID, err))
		return
	}
	final := result.(*TurnState)

	assistantMessage, err := e.persistTurn(ctx, conversation, input, final)
	if err != nil {
		e.logger.Error("turn %s: failed to persist: %v", conversation.ID, err)
		emit(errorFrame(conversation.ID, err))
		return
	}

	e.saveCheckpoint(ctx, final)

	emit(Frame{
		Type:           FrameComplete,
		ConversationID: conversation.ID,
		MessageID:      assistantMessage.ID,
		Content:        final.Response,
	})
}

// processInput validates the user input and assembles the transcript
// the model will see.
func (e *Engine) processInput(ctx context.Context, state any) (any, error) {
	s := state.(*TurnState)

	if strings.TrimSpace(s.Input) == "" {
		return nil, &domain.ValidationError{Reason: "message content is empty"}
	}
	if len(s.Input) > e.maxInputBytes {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("message exceeds %d bytes", e.maxInputBytes)}
	}
	s.Phase = PhaseValidated

	var transcript []llms.MessageContent
	if e.systemPrompt != "" {
		transcript = append(transcript, llms.TextParts(llms.ChatMessageTypeSystem, e.systemPrompt))
	}
	transcript = append(transcript, s.Messages...)
	transcript = append(transcript, llms.TextParts(llms.ChatMessageTypeHuman, s.Input))

	s.Messages = transcript
	s.Phase = PhaseGenerating
	return s, nil
}

// callLLM generates the next assistant message, streaming tokens as
// they arrive. When the model requests tools the turn moves to the
// tools node; otherwise the response is final.
func (e *Engine) callLLM(ctx context.Context, state any) (any, error) {
	s := state.(*TurnState)

	if s.ToolIterations >= e.maxToolIterations {
		e.logger.Warn("turn %s: tool iteration limit (%d) reached", s.ConversationID, e.maxToolIterations)
		s.Messages = append(s.Messages, llms.TextParts(llms.ChatMessageTypeAI, iterationLimitReply))
		s.Response = iterationLimitReply
		s.Phase = PhaseComplete
		return s, nil
	}

	opts := []llms.CallOption{
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) > 0 {
				s.emit(Frame{Type: FrameToken, ConversationID: s.ConversationID, Content: string(chunk)})
			}
			return nil
		}),
	}
	if e.executor != nil {
		if defs := e.executor.Definitions(); len(defs) > 0 {
			opts = append(opts, llms.WithTools(defs))
		}
	}

	resp, err := e.model.GenerateContent(ctx, s.Messages, opts...)
	if err != nil {
		return nil, &domain.LLMError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &domain.LLMError{Err: errors.New("model returned no choices")}
	}
	choice := resp.Choices[0]

	assistantMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if choice.Content != "" {
		assistantMsg.Parts = append(assistantMsg.Parts, llms.TextPart(choice.Content))
	}
	for _, tc := range choice.ToolCalls {
		assistantMsg.Parts = append(assistantMsg.Parts, tc)
	}
	s.Messages = append(s.Messages, assistantMsg)

	if len(choice.ToolCalls) > 0 {
		s.PendingCalls = choice.ToolCalls
		s.ToolIterations++
		s.Phase = PhaseToolCall
		return s, nil
	}

	s.Response = choice.Content
	s.Phase = PhaseComplete
	return s, nil
}

// runTools executes the pending tool calls in order. A failing tool
// feeds its error back to the model as the tool result; only an unknown
// tool name fails the turn.
func (e *Engine) runTools(ctx context.Context, state any) (any, error) {
	s := state.(*TurnState)

	for _, tc := range s.PendingCalls {
		name := tc.FunctionCall.Name
		args := tc.FunctionCall.Arguments

		// Resolve the name before announcing the call so a failed turn
		// never leaves a tool_start without its tool_end.
		if e.executor == nil || !e.executor.Has(name) {
			return nil, &domain.ToolError{Tool: name, Err: tool.ErrUnknownTool}
		}

		s.emit(Frame{Type: FrameToolStart, ConversationID: s.ConversationID, Tool: name, ToolInput: args})

		result, err := e.executor.Execute(ctx, tool.Invocation{Tool: name, ToolInput: args})
		if err != nil {
			e.logger.Warn("turn %s: tool %s failed: %v", s.ConversationID, name, err)
			result = fmt.Sprintf("Error: %v", err)
		}

		s.emit(Frame{Type: FrameToolEnd, ConversationID: s.ConversationID, Tool: name, Content: result})

		s.Messages = append(s.Messages, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       name,
					Content:    result,
				},
			},
		})
	}

	s.PendingCalls = nil
	s.Phase = PhaseGenerating
	return s, nil
}

// persistTurn writes the user and assistant messages and bumps the
// conversation's message count.
func (e *Engine) persistTurn(ctx context.Context, conversation *domain.Conversation, input string, final *TurnState) (*domain.Message, error) {
	now := time.Now().UTC()

	userMessage := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		Role:           domain.RoleUser,
		Content:        input,
		CreatedAt:      now,
	}
	if err := e.messages.Create(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	assistantMessage := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		Role:           domain.RoleAssistant,
		Content:        final.Response,
		CreatedAt:      now,
	}
	if err := e.messages.Create(ctx, assistantMessage); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	if err := e.conversations.IncrementMessageCount(ctx, conversation.ID, 2); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}

	return assistantMessage, nil
}

// saveCheckpoint records the turn outcome under the conversation's
// thread. Checkpointing is best-effort; a failure is logged but does
// not fail the turn.
func (e *Engine) saveCheckpoint(ctx context.Context, final *TurnState) {
	if e.checkpoints == nil {
		return
	}

	version := 1
	latest, err := e.checkpoints.LatestByThread(ctx, final.ConversationID)
	switch {
	case err == nil:
		version = latest.Version + 1
	case !errors.Is(err, store.ErrCheckpointNotFound):
		// Writing version 1 over an unreadable history would break the
		// thread's version ordering; skip this checkpoint instead.
		e.logger.Warn("turn %s: failed to read latest checkpoint: %v", final.ConversationID, err)
		return
	}

	checkpoint := &store.Checkpoint{
		ID:        uuid.NewString(),
		ThreadID:  final.ConversationID,
		NodeName:  nodeCallLLM,
		State: map[string]any{
			"phase":           string(final.Phase),
			"response":        final.Response,
			"tool_iterations": final.ToolIterations,
			"message_count":   len(final.Messages),
		},
		Timestamp: time.Now().UTC(),
		Version:   version,
	}

	if err := e.checkpoints.Save(ctx, checkpoint); err != nil {
		e.logger.Warn("turn %s: failed to save checkpoint: %v", final.ConversationID, err)
	}
}

func errorFrame(conversationID string, err error) Frame {
	return Frame{
		Type:           FrameError,
		ConversationID: conversationID,
		Code:           domain.ErrorCode(err),
		Error:          userFacingMessage(err),
	}
}

// userFacingMessage hides provider and infrastructure details from the
// client while keeping validation feedback specific.
func userFacingMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}

	switch domain.ErrorCode(err) {
	case domain.CodeLLMError:
		return "The assistant is temporarily unavailable. Please try again."
	case domain.CodeToolError:
		return "A tool required to answer this message is unavailable."
	case domain.CodeAccessDenied:
		return "You do not have access to this conversation."
	case domain.CodeTurnInProgress:
		return "A response is already being generated for this conversation."
	default:
		return "An unexpected error occurred. Please try again."
	}
}
