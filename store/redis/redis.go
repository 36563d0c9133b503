// Package redis provides a CheckpointStore backed by Redis. Checkpoints
// are JSON blobs indexed per thread through a sorted set keyed by
// version, so the latest checkpoint is one ZRANGE away.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pablo-lozano-martin/genesis-sub005/store"
)

// CheckpointStore implements store.CheckpointStore using Redis.
type CheckpointStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.CheckpointStore = (*CheckpointStore)(nil)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "genesis:"
	TTL      time.Duration // Expiration for checkpoints, default 0 (no expiration)
}

// New creates a Redis checkpoint store.
func New(opts Options) *CheckpointStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "genesis:"
	}

	return &CheckpointStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Close releases the underlying client.
func (s *CheckpointStore) Close() error {
	return s.client.Close()
}

func (s *CheckpointStore) checkpointKey(id string) string {
	return fmt.Sprintf("%scheckpoint:%s", s.prefix, id)
}

func (s *CheckpointStore) threadKey(id string) string {
	return fmt.Sprintf("%sthread:%s:checkpoints", s.prefix, id)
}

// Save stores a checkpoint and indexes it under its thread, scored by
// version.
func (s *CheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.checkpointKey(checkpoint.ID), data, s.ttl)

	threadKey := s.threadKey(checkpoint.ThreadID)
	pipe.ZAdd(ctx, threadKey, redis.Z{
		Score:  float64(checkpoint.Version),
		Member: checkpoint.ID,
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, threadKey, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save checkpoint to redis: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *CheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.checkpointKey(checkpointID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", store.ErrCheckpointNotFound, checkpointID)
		}
		return nil, fmt.Errorf("failed to load checkpoint from redis: %w", err)
	}

	var checkpoint store.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// List returns all checkpoints for a thread ordered by version.
func (s *CheckpointStore) List(ctx context.Context, threadID string) ([]*store.Checkpoint, error) {
	ids, err := s.client.ZRange(ctx, s.threadKey(threadID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints for thread %s: %w", threadID, err)
	}
	if len(ids) == 0 {
		return []*store.Checkpoint{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.checkpointKey(id))
	}

	// MGet returns nil for expired members; skip those.
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkpoints: %w", err)
	}

	checkpoints := make([]*store.Checkpoint, 0, len(results))
	for _, result := range results {
		raw, ok := result.(string)
		if !ok {
			continue
		}
		var checkpoint store.Checkpoint
		if err := json.Unmarshal([]byte(raw), &checkpoint); err != nil {
			continue
		}
		checkpoints = append(checkpoints, &checkpoint)
	}
	return checkpoints, nil
}

// LatestByThread returns the highest-version checkpoint for a thread.
func (s *CheckpointStore) LatestByThread(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	ids, err := s.client.ZRevRange(ctx, s.threadKey(threadID), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query latest checkpoint: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: thread %s", store.ErrCheckpointNotFound, threadID)
	}
	return s.Load(ctx, ids[0])
}

// Delete removes a checkpoint and its thread index entry.
func (s *CheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	checkpoint, err := s.Load(ctx, checkpointID)
	if err != nil {
		if errors.Is(err, store.ErrCheckpointNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.checkpointKey(checkpointID))
	pipe.ZRem(ctx, s.threadKey(checkpoint.ThreadID), checkpointID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes all checkpoints for a thread.
func (s *CheckpointStore) Clear(ctx context.Context, threadID string) error {
	threadKey := s.threadKey(threadID)
	ids, err := s.client.ZRange(ctx, threadKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get checkpoints for clearing: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.checkpointKey(id))
	}
	pipe.Del(ctx, threadKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}
