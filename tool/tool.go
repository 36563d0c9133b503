// Package tool provides the built-in tools the assistant can call
// during a turn and an executor that dispatches model tool calls to
// them.
package tool

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

// ErrUnknownTool is returned when the model requests a tool that is not
// registered.
var ErrUnknownTool = errors.New("unknown tool")

// Invocation is a single tool call requested by the model.
type Invocation struct {
	Tool      string
	ToolInput string
}

// Executor dispatches invocations to registered tools by name.
type Executor struct {
	tools map[string]tools.Tool
	order []string
}

// NewExecutor creates an executor over the given tools.
func NewExecutor(registered []tools.Tool) *Executor {
	e := &Executor{tools: make(map[string]tools.Tool, len(registered))}
	for _, t := range registered {
		if _, exists := e.tools[t.Name()]; !exists {
			e.order = append(e.order, t.Name())
		}
		e.tools[t.Name()] = t
	}
	return e
}

// Has reports whether a tool with the given name is registered.
func (e *Executor) Has(name string) bool {
	_, ok := e.tools[name]
	return ok
}

// Execute runs the named tool. An unknown tool name or a tool failure
// is reported as a domain.ToolError.
func (e *Executor) Execute(ctx context.Context, inv Invocation) (string, error) {
	t, ok := e.tools[inv.Tool]
	if !ok {
		return "", &domain.ToolError{Tool: inv.Tool, Err: ErrUnknownTool}
	}
	result, err := t.Call(ctx, inv.ToolInput)
	if err != nil {
		return "", &domain.ToolError{Tool: inv.Tool, Err: err}
	}
	return result, nil
}

// Definitions returns the function definitions to advertise to the
// model, in registration order.
func (e *Executor) Definitions() []llms.Tool {
	defs := make([]llms.Tool, 0, len(e.order))
	for _, name := range e.order {
		t := e.tools[name]
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  parametersFor(t),
			},
		})
	}
	return defs
}

// parametersFor builds the JSON schema for a tool's arguments. Tools
// that implement schemaProvider describe themselves; the rest take a
// single free-form input string.
func parametersFor(t tools.Tool) map[string]any {
	if sp, ok := t.(schemaProvider); ok {
		return sp.Schema()
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": "The input query for the tool",
			},
		},
		"required":             []string{"input"},
		"additionalProperties": false,
	}
}

type schemaProvider interface {
	Schema() map[string]any
}
