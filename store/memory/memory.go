// Package memory provides an in-memory CheckpointStore for tests and
// single-process deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pablo-lozano-martin/genesis-sub005/store"
)

// CheckpointStore keeps checkpoints in process memory.
type CheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
	byThread    map[string][]string
}

var _ store.CheckpointStore = (*CheckpointStore)(nil)

// New creates an empty in-memory checkpoint store.
func New() *CheckpointStore {
	return &CheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
		byThread:    make(map[string][]string),
	}
}

// Save stores a checkpoint.
func (s *CheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *checkpoint
	if _, exists := s.checkpoints[cp.ID]; !exists {
		s.byThread[cp.ThreadID] = append(s.byThread[cp.ThreadID], cp.ID)
	}
	s.checkpoints[cp.ID] = &cp
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *CheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrCheckpointNotFound, checkpointID)
	}
	copied := *cp
	return &copied, nil
}

// List returns all checkpoints for a thread ordered by version.
func (s *CheckpointStore) List(ctx context.Context, threadID string) ([]*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byThread[threadID]
	checkpoints := make([]*store.Checkpoint, 0, len(ids))
	for _, id := range ids {
		if cp, ok := s.checkpoints[id]; ok {
			copied := *cp
			checkpoints = append(checkpoints, &copied)
		}
	}
	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].Version < checkpoints[j].Version
	})
	return checkpoints, nil
}

// LatestByThread returns the highest-version checkpoint for a thread.
func (s *CheckpointStore) LatestByThread(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	checkpoints, err := s.List(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if len(checkpoints) == 0 {
		return nil, fmt.Errorf("%w: thread %s", store.ErrCheckpointNotFound, threadID)
	}
	return checkpoints[len(checkpoints)-1], nil
}

// Delete removes a single checkpoint.
func (s *CheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return nil
	}
	delete(s.checkpoints, checkpointID)

	ids := s.byThread[cp.ThreadID]
	for i, id := range ids {
		if id == checkpointID {
			s.byThread[cp.ThreadID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes all checkpoints for a thread.
func (s *CheckpointStore) Clear(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byThread[threadID] {
		delete(s.checkpoints, id)
	}
	delete(s.byThread, threadID)
	return nil
}
