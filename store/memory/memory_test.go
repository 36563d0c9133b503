package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablo-lozano-martin/genesis-sub005/store"
)

func TestCheckpointStore(t *testing.T) {
	s := New()
	ctx := context.Background()
	threadID := "conv-1"

	cp := &store.Checkpoint{
		ID:        "cp-1",
		ThreadID:  threadID,
		NodeName:  "call_llm",
		State:     map[string]any{"input": "hello"},
		Timestamp: time.Now(),
		Version:   1,
	}

	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, cp.ID, loaded.ID)
	assert.Equal(t, threadID, loaded.ThreadID)
	assert.Equal(t, "call_llm", loaded.NodeName)

	list, err := s.List(ctx, threadID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, "cp-1"))
	_, err = s.Load(ctx, "cp-1")
	assert.ErrorIs(t, err, store.ErrCheckpointNotFound)
}

func TestLatestByThread(t *testing.T) {
	s := New()
	ctx := context.Background()
	threadID := "conv-2"

	for v := 1; v <= 3; v++ {
		require.NoError(t, s.Save(ctx, &store.Checkpoint{
			ID:        string(rune('a' + v)),
			ThreadID:  threadID,
			Version:   v,
			Timestamp: time.Now(),
		}))
	}

	latest, err := s.LatestByThread(ctx, threadID)
	require.NoError(t, err)
	assert.Equal(t, 3, latest.Version)

	_, err = s.LatestByThread(ctx, "no-such-thread")
	assert.ErrorIs(t, err, store.ErrCheckpointNotFound)
}

func TestClear(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &store.Checkpoint{ID: "cp-1", ThreadID: "t-1", Version: 1}))
	require.NoError(t, s.Save(ctx, &store.Checkpoint{ID: "cp-2", ThreadID: "t-1", Version: 2}))
	require.NoError(t, s.Save(ctx, &store.Checkpoint{ID: "cp-3", ThreadID: "t-2", Version: 1}))

	require.NoError(t, s.Clear(ctx, "t-1"))

	list, err := s.List(ctx, "t-1")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = s.List(ctx, "t-2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSaveCopiesCheckpoint(t *testing.T) {
	s := New()
	ctx := context.Background()

	cp := &store.Checkpoint{ID: "cp-1", ThreadID: "t-1", Version: 1}
	require.NoError(t, s.Save(ctx, cp))

	cp.NodeName = "mutated"

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Empty(t, loaded.NodeName)
}
