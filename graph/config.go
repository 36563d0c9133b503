package graph

// Config carries per-invocation settings.
type Config struct {
	// ThreadID identifies the conversation whose state this invocation
	// operates on. It is surfaced to listeners and used by callers to key
	// checkpoints.
	ThreadID string

	// Listeners observe node transitions during the invocation.
	Listeners []Listener

	// MaxSteps overrides the graph's step budget when > 0.
	MaxSteps int
}

// WithThreadID builds a Config carrying only a thread ID.
func WithThreadID(threadID string) *Config {
	return &Config{ThreadID: threadID}
}

// Listener observes node lifecycle events during an invocation. Calls
// are made sequentially, in execution order.
type Listener interface {
	OnNodeStart(threadID, node string, state any)
	OnNodeEnd(threadID, node string, state any)
	OnNodeError(threadID, node string, err error)
}

// NopListener implements Listener with no-ops, for embedding.
type NopListener struct{}

func (NopListener) OnNodeStart(string, string, any) {}
func (NopListener) OnNodeEnd(string, string, any)   {}
func (NopListener) OnNodeError(string, string, error) {
}
