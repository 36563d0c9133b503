package graph

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// defaultMaxSteps bounds a single invocation. A chat turn visits a
// handful of nodes per tool iteration, so this is generous.
const defaultMaxSteps = 100

// StateGraph is a declaration of nodes and edges. Call Compile to turn
// it into a Runnable.
type StateGraph struct {
	nodes            map[string]Node
	edges            []Edge
	conditionalEdges map[string]Condition
	entryPoint       string
	retryPolicy      *RetryPolicy
	maxSteps         int
}

// RetryPolicy re-runs a failed node when its error matches one of the
// retryable substrings.
type RetryPolicy struct {
	MaxRetries      int
	BackoffStrategy BackoffStrategy
	BaseDelay       time.Duration
	RetryableErrors []string
}

// BackoffStrategy selects how retry delays grow.
type BackoffStrategy int

const (
	FixedBackoff BackoffStrategy = iota
	ExponentialBackoff
	LinearBackoff
)

// NewStateGraph creates an empty state graph.
func NewStateGraph() *StateGraph {
	return &StateGraph{
		nodes:            make(map[string]Node),
		conditionalEdges: make(map[string]Condition),
		maxSteps:         defaultMaxSteps,
	}
}

// AddNode registers a named node.
func (g *StateGraph) AddNode(name, description string, fn NodeFunc) {
	g.nodes[name] = Node{Name: name, Description: description, Function: fn}
}

// AddEdge adds a static transition from one node to another.
func (g *StateGraph) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdge routes from a node to a target chosen at runtime.
// A conditional edge takes precedence over static edges from the same
// node.
func (g *StateGraph) AddConditionalEdge(from string, cond Condition) {
	g.conditionalEdges[from] = cond
}

// SetEntryPoint declares the node where execution starts.
func (g *StateGraph) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetRetryPolicy enables retries for transient node failures.
func (g *StateGraph) SetRetryPolicy(policy *RetryPolicy) {
	g.retryPolicy = policy
}

// SetMaxSteps overrides the default step budget.
func (g *StateGraph) SetMaxSteps(n int) {
	if n > 0 {
		g.maxSteps = n
	}
}

// Compile validates the declaration and returns a Runnable.
func (g *StateGraph) Compile() (*Runnable, error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, g.entryPoint)
	}
	return &Runnable{graph: g}, nil
}

// Runnable is a compiled graph that can be invoked repeatedly and
// concurrently; all per-invocation state lives in the state value and
// the Config.
type Runnable struct {
	graph *StateGraph
}

// Invoke executes the graph from the entry point until END.
func (r *Runnable) Invoke(ctx context.Context, initialState any) (any, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the graph with per-invocation settings.
// Nodes run sequentially; the returned state is the output of the last
// node before END.
func (r *Runnable) InvokeWithConfig(ctx context.Context, initialState any, config *Config) (any, error) {
	state := initialState
	current := r.graph.entryPoint

	maxSteps := r.graph.maxSteps
	threadID := ""
	var listeners []Listener
	if config != nil {
		threadID = config.ThreadID
		listeners = config.Listeners
		if config.MaxSteps > 0 {
			maxSteps = config.MaxSteps
		}
	}

	for steps := 0; current != END; steps++ {
		if steps >= maxSteps {
			return state, fmt.Errorf("%w (%d)", ErrMaxStepsExceeded, maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			return state, fmt.Errorf("%w: %s", ErrNodeNotFound, current)
		}

		for _, l := range listeners {
			l.OnNodeStart(threadID, current, state)
		}

		next, err := r.executeWithRetry(ctx, node, state)
		if err != nil {
			for _, l := range listeners {
				l.OnNodeError(threadID, current, err)
			}
			return state, fmt.Errorf("node %s: %w", current, err)
		}
		state = next

		for _, l := range listeners {
			l.OnNodeEnd(threadID, current, state)
		}

		current, err = r.nextNode(ctx, current, state)
		if err != nil {
			return state, err
		}
	}

	return state, nil
}

// nextNode resolves the outgoing transition for a node. Conditional
// edges win over static edges.
func (r *Runnable) nextNode(ctx context.Context, current string, state any) (string, error) {
	if cond, ok := r.graph.conditionalEdges[current]; ok {
		next := cond(ctx, state)
		if next == "" {
			return "", fmt.Errorf("conditional edge from %s returned empty target", current)
		}
		return next, nil
	}
	for _, edge := range r.graph.edges {
		if edge.From == current {
			return edge.To, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, current)
}

func (r *Runnable) executeWithRetry(ctx context.Context, node Node, state any) (any, error) {
	policy := r.graph.retryPolicy

	attempts := 1
	if policy != nil {
		attempts = policy.MaxRetries + 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := node.Function(ctx, state)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if policy == nil || attempt == attempts-1 || !policy.retryable(err) {
			break
		}
		if delay := policy.delay(attempt); delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

func (p *RetryPolicy) retryable(err error) bool {
	msg := err.Error()
	for _, pattern := range p.RetryableErrors {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func (p *RetryPolicy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	switch p.BackoffStrategy {
	case ExponentialBackoff:
		return base * time.Duration(1<<attempt)
	case LinearBackoff:
		return base * time.Duration(attempt+1)
	default:
		return base
	}
}
