package tool

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/tools"
)

// ClockTool reports the current date and time.
type ClockTool struct {
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

var _ tools.Tool = (*ClockTool)(nil)

func (t *ClockTool) Name() string { return "current_time" }

func (t *ClockTool) Description() string {
	return "Get the current date and time in UTC. Takes no meaningful input."
}

func (t *ClockTool) Call(ctx context.Context, input string) (string, error) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	return now().UTC().Format(time.RFC1123), nil
}
