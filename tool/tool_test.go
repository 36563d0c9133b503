package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/tools"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

func TestAddTool(t *testing.T) {
	result, err := AddTool{}.Call(context.Background(), `{"a": 2, "b": 3}`)
	require.NoError(t, err)
	assert.Equal(t, "5", result)

	result, err = AddTool{}.Call(context.Background(), `{"a": 0.5, "b": 0.25}`)
	require.NoError(t, err)
	assert.Equal(t, "0.75", result)
}

func TestMultiplyTool(t *testing.T) {
	result, err := MultiplyTool{}.Call(context.Background(), `{"a": 4, "b": 6}`)
	require.NoError(t, err)
	assert.Equal(t, "24", result)
}

func TestCalculatorRejectsBadInput(t *testing.T) {
	_, err := AddTool{}.Call(context.Background(), `not json`)
	assert.Error(t, err)

	_, err = MultiplyTool{}.Call(context.Background(), `{"a": 1}`)
	assert.Error(t, err)
}

func TestClockTool(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &ClockTool{Now: func() time.Time { return fixed }}

	result, err := clock.Call(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, fixed.Format(time.RFC1123), result)
}

func TestExecutorDispatch(t *testing.T) {
	executor := NewExecutor([]tools.Tool{AddTool{}, MultiplyTool{}})

	result, err := executor.Execute(context.Background(), Invocation{
		Tool:      "add",
		ToolInput: `{"a": 1, "b": 2}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "3", result)
}

func TestExecutorUnknownTool(t *testing.T) {
	executor := NewExecutor([]tools.Tool{AddTool{}})

	_, err := executor.Execute(context.Background(), Invocation{Tool: "launch_rockets"})
	require.Error(t, err)

	var toolErr *domain.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "launch_rockets", toolErr.Tool)
}

func TestExecutorDefinitions(t *testing.T) {
	executor := NewExecutor([]tools.Tool{AddTool{}, &ClockTool{}})

	defs := executor.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "add", defs[0].Function.Name)
	assert.Equal(t, "current_time", defs[1].Function.Name)

	// add declares its own operand schema
	props, ok := defs[0].Function.Parameters.(map[string]any)["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
}

func TestWebSearchParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go concurrency", r.URL.Query().Get("q"))
		w.Write([]byte(`
			<html><body>
			<div class="result">
				<h2 class="result__title"><a href="https://go.dev/doc">Go docs</a></h2>
				<a class="result__snippet">Concurrency patterns in Go.</a>
			</div>
			<div class="result">
				<h2 class="result__title"><a href="https://example.com">Other</a></h2>
				<a class="result__snippet">Something else.</a>
			</div>
			</body></html>
		`))
	}))
	defer server.Close()

	search := NewWebSearchTool(WebSearchOptions{
		Client:     server.Client(),
		BaseURL:    server.URL,
		MaxResults: 1,
	})

	result, err := search.Call(context.Background(), "go concurrency")
	require.NoError(t, err)
	assert.Contains(t, result, "Go docs")
	assert.Contains(t, result, "https://go.dev/doc")
	assert.Contains(t, result, "Concurrency patterns")
	assert.NotContains(t, result, "Other")
}

func TestWebSearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	}))
	defer server.Close()

	search := NewWebSearchTool(WebSearchOptions{Client: server.Client(), BaseURL: server.URL})

	result, err := search.Call(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Contains(t, result, "No results found")
}

func TestWebSearchEmptyQuery(t *testing.T) {
	search := NewWebSearchTool(WebSearchOptions{})
	_, err := search.Call(context.Background(), "   ")
	assert.Error(t, err)
}
