// Package graph provides a small state-machine substrate for driving a
// chat turn through named nodes connected by static and conditional
// edges. A graph is declared once, compiled, and then invoked per turn.
package graph

import (
	"context"
	"errors"
)

// END is the sentinel target that terminates execution.
const END = "END"

var (
	// ErrEntryPointNotSet is returned by Compile when no entry point was declared.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when execution reaches an undeclared node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when a node has neither a static nor a
	// conditional edge leading out of it.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrMaxStepsExceeded is returned when an invocation runs longer than
	// the configured step budget, which indicates a cycle that never
	// reaches END.
	ErrMaxStepsExceeded = errors.New("maximum graph steps exceeded")
)

// NodeFunc transforms the state. It receives the current state and
// returns the next state.
type NodeFunc func(ctx context.Context, state any) (any, error)

// Node is a named step in the graph.
type Node struct {
	Name        string
	Description string
	Function    NodeFunc
}

// Edge is a static transition between two nodes.
type Edge struct {
	From string
	To   string
}

// Condition selects the next node at runtime based on the state.
type Condition func(ctx context.Context, state any) string
