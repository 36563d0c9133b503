package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tmc/langchaingo/tools"
)

// AddTool adds two numbers.
type AddTool struct{}

// MultiplyTool multiplies two numbers.
type MultiplyTool struct{}

var (
	_ tools.Tool = AddTool{}
	_ tools.Tool = MultiplyTool{}
)

func (AddTool) Name() string { return "add" }

func (AddTool) Description() string {
	return "Add two numbers. Input is a JSON object with numeric fields \"a\" and \"b\"."
}

func (AddTool) Schema() map[string]any { return binaryOperandSchema }

func (AddTool) Call(ctx context.Context, input string) (string, error) {
	a, b, err := parseOperands(input)
	if err != nil {
		return "", err
	}
	return formatNumber(a + b), nil
}

func (MultiplyTool) Name() string { return "multiply" }

func (MultiplyTool) Description() string {
	return "Multiply two numbers. Input is a JSON object with numeric fields \"a\" and \"b\"."
}

func (MultiplyTool) Schema() map[string]any { return binaryOperandSchema }

func (MultiplyTool) Call(ctx context.Context, input string) (string, error) {
	a, b, err := parseOperands(input)
	if err != nil {
		return "", err
	}
	return formatNumber(a * b), nil
}

var binaryOperandSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"a": map[string]any{"type": "number", "description": "First operand"},
		"b": map[string]any{"type": "number", "description": "Second operand"},
	},
	"required":             []string{"a", "b"},
	"additionalProperties": false,
}

func parseOperands(input string) (float64, float64, error) {
	var args struct {
		A *float64 `json:"a"`
		B *float64 `json:"b"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return 0, 0, fmt.Errorf("invalid calculator input %q: %w", input, err)
	}
	if args.A == nil || args.B == nil {
		return 0, 0, fmt.Errorf("calculator input must provide both a and b")
	}
	return *args.A, *args.B, nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
