package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied is returned when a caller is not the owner of the
	// entity it is operating on.
	ErrAccessDenied = errors.New("access denied")

	// ErrTurnInProgress is returned when a turn is started on a
	// conversation whose previous turn has not reached a terminal state.
	ErrTurnInProgress = errors.New("a turn is already in progress for this conversation")
)

// ValidationError rejects user input before any model call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// LLMError wraps a failure from the model provider.
type LLMError struct {
	Err error
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("llm call failed: %v", e.Err)
}

func (e *LLMError) Unwrap() error { return e.Err }

// ToolError wraps a failure while resolving or executing a tool call.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Wire error codes shared by the REST and WebSocket surfaces.
const (
	CodeInvalidFormat  = "INVALID_FORMAT"
	CodeAccessDenied   = "ACCESS_DENIED"
	CodeTurnInProgress = "TURN_IN_PROGRESS"
	CodeLLMError       = "LLM_ERROR"
	CodeToolError      = "TOOL_ERROR"
	CodeInternalError  = "INTERNAL_ERROR"
)

// ErrorCode maps an error to its stable wire code.
func ErrorCode(err error) string {
	var ve *ValidationError
	var le *LLMError
	var te *ToolError
	switch {
	case errors.As(err, &ve):
		return CodeInvalidFormat
	case errors.As(err, &le):
		return CodeLLMError
	case errors.As(err, &te):
		return CodeToolError
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrNotFound):
		return CodeAccessDenied
	case errors.Is(err, ErrTurnInProgress):
		return CodeTurnInProgress
	default:
		return CodeInternalError
	}
}
