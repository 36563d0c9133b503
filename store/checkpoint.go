// Package store defines checkpoint persistence for conversation
// threads. A checkpoint is a durable snapshot of a thread's state taken
// after a turn step; backends live in subpackages.
package store

import (
	"context"
	"time"
)

// Checkpoint is a saved snapshot of a thread's state.
type Checkpoint struct {
	ID        string         `json:"id"`
	ThreadID  string         `json:"thread_id"`
	NodeName  string         `json:"node_name"`
	State     any            `json:"state"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Version   int            `json:"version"`
}

// CheckpointStore persists checkpoints keyed by thread ID.
type CheckpointStore interface {
	// Save stores a checkpoint.
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by ID.
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// List returns all checkpoints for a thread, oldest first.
	List(ctx context.Context, threadID string) ([]*Checkpoint, error)

	// LatestByThread returns the highest-version checkpoint for a
	// thread, or ErrCheckpointNotFound if the thread has none.
	LatestByThread(ctx context.Context, threadID string) (*Checkpoint, error)

	// Delete removes a single checkpoint.
	Delete(ctx context.Context, checkpointID string) error

	// Clear removes all checkpoints for a thread.
	Clear(ctx context.Context, threadID string) error
}
