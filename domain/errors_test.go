package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"validation", &ValidationError{Reason: "empty"}, CodeInvalidFormat},
		{"llm", &LLMError{Err: errors.New("timeout")}, CodeLLMError},
		{"tool", &ToolError{Tool: "add", Err: errors.New("bad input")}, CodeToolError},
		{"not found", ErrNotFound, CodeAccessDenied},
		{"access denied", ErrAccessDenied, CodeAccessDenied},
		{"turn in progress", ErrTurnInProgress, CodeTurnInProgress},
		{"wrapped llm", fmt.Errorf("node call_llm: %w", &LLMError{Err: errors.New("boom")}), CodeLLMError},
		{"unknown", errors.New("mystery"), CodeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, ErrorCode(tc.err))
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	inner := errors.New("connection reset")
	err := &LLMError{Err: inner}
	assert.ErrorIs(t, err, inner)

	toolErr := &ToolError{Tool: "web_search", Err: inner}
	assert.ErrorIs(t, toolErr, inner)
	assert.Contains(t, toolErr.Error(), "web_search")
}
