package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearGraph(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("double", "doubles the value", func(ctx context.Context, state any) (any, error) {
		return state.(int) * 2, nil
	})
	g.AddNode("inc", "adds one", func(ctx context.Context, state any) (any, error) {
		return state.(int) + 1, nil
	})
	g.SetEntryPoint("double")
	g.AddEdge("double", "inc")
	g.AddEdge("inc", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.Invoke(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 7, result)
}

func TestConditionalEdge(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("classify", "", func(ctx context.Context, state any) (any, error) {
		return state, nil
	})
	g.AddNode("negate", "", func(ctx context.Context, state any) (any, error) {
		return -state.(int), nil
	})
	g.SetEntryPoint("classify")
	g.AddConditionalEdge("classify", func(ctx context.Context, state any) string {
		if state.(int) < 0 {
			return "negate"
		}
		return END
	})
	g.AddEdge("negate", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.Invoke(context.Background(), -5)
	require.NoError(t, err)
	assert.Equal(t, 5, result)

	result, err = runnable.Invoke(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, result)
}

func TestCompileErrors(t *testing.T) {
	g := NewStateGraph()
	_, err := g.Compile()
	assert.ErrorIs(t, err, ErrEntryPointNotSet)

	g.SetEntryPoint("missing")
	_, err = g.Compile()
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestNoOutgoingEdge(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("lonely", "", func(ctx context.Context, state any) (any, error) {
		return state, nil
	})
	g.SetEntryPoint("lonely")

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoOutgoingEdge)
}

func TestMaxStepsGuard(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("loop", "", func(ctx context.Context, state any) (any, error) {
		return state.(int) + 1, nil
	})
	g.SetEntryPoint("loop")
	g.AddEdge("loop", "loop")
	g.SetMaxSteps(10)

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), 0)
	assert.ErrorIs(t, err, ErrMaxStepsExceeded)
}

func TestNodeErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	g := NewStateGraph()
	g.AddNode("fail", "", func(ctx context.Context, state any) (any, error) {
		return nil, boom
	})
	g.SetEntryPoint("fail")
	g.AddEdge("fail", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "node fail")
}

func TestRetryPolicy(t *testing.T) {
	calls := 0
	g := NewStateGraph()
	g.AddNode("flaky", "", func(ctx context.Context, state any) (any, error) {
		calls++
		if calls < 3 {
			return nil, fmt.Errorf("connection refused")
		}
		return "ok", nil
	})
	g.SetEntryPoint("flaky")
	g.AddEdge("flaky", END)
	g.SetRetryPolicy(&RetryPolicy{
		MaxRetries:      3,
		BackoffStrategy: FixedBackoff,
		BaseDelay:       time.Millisecond,
		RetryableErrors: []string{"connection refused"},
	})

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicySkipsNonRetryable(t *testing.T) {
	calls := 0
	g := NewStateGraph()
	g.AddNode("fail", "", func(ctx context.Context, state any) (any, error) {
		calls++
		return nil, errors.New("bad request")
	})
	g.SetEntryPoint("fail")
	g.AddEdge("fail", END)
	g.SetRetryPolicy(&RetryPolicy{
		MaxRetries:      3,
		BaseDelay:       time.Millisecond,
		RetryableErrors: []string{"connection refused"},
	})

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

type recordingListener struct {
	starts []string
	ends   []string
	errs   []string
}

func (l *recordingListener) OnNodeStart(threadID, node string, state any) {
	l.starts = append(l.starts, node)
}

func (l *recordingListener) OnNodeEnd(threadID, node string, state any) {
	l.ends = append(l.ends, node)
}

func (l *recordingListener) OnNodeError(threadID, node string, err error) {
	l.errs = append(l.errs, node)
}

func TestListenersObserveExecutionOrder(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("a", "", func(ctx context.Context, state any) (any, error) { return state, nil })
	g.AddNode("b", "", func(ctx context.Context, state any) (any, error) { return state, nil })
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	listener := &recordingListener{}
	_, err = runnable.InvokeWithConfig(context.Background(), nil, &Config{
		ThreadID:  "t-1",
		Listeners: []Listener{listener},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, listener.starts)
	assert.Equal(t, []string{"a", "b"}, listener.ends)
	assert.Empty(t, listener.errs)
}

func TestContextCancellation(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("spin", "", func(ctx context.Context, state any) (any, error) {
		return state, nil
	})
	g.SetEntryPoint("spin")
	g.AddEdge("spin", "spin")

	runnable, err := g.Compile()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runnable.Invoke(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
