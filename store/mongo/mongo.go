// Package mongo provides a CheckpointStore backed by MongoDB, the same
// database the conversation repositories use, so a deployment needs only
// one datastore.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pablo-lozano-martin/genesis-sub005/store"
)

// CheckpointStore implements store.CheckpointStore using MongoDB.
type CheckpointStore struct {
	collection *mongo.Collection
}

var _ store.CheckpointStore = (*CheckpointStore)(nil)

type checkpointDoc struct {
	ID        string         `bson:"_id"`
	ThreadID  string         `bson:"thread_id"`
	NodeName  string         `bson:"node_name"`
	State     any            `bson:"state"`
	Metadata  map[string]any `bson:"metadata,omitempty"`
	Timestamp time.Time      `bson:"timestamp"`
	Version   int            `bson:"version"`
}

// New creates a checkpoint store over the given collection and ensures
// the thread index exists.
func New(ctx context.Context, collection *mongo.Collection) (*CheckpointStore, error) {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "thread_id", Value: 1}, {Key: "version", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint index: %w", err)
	}
	return &CheckpointStore{collection: collection}, nil
}

// Save stores a checkpoint, replacing any existing one with the same ID.
func (s *CheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	doc := checkpointDoc{
		ID:        checkpoint.ID,
		ThreadID:  checkpoint.ThreadID,
		NodeName:  checkpoint.NodeName,
		State:     checkpoint.State,
		Metadata:  checkpoint.Metadata,
		Timestamp: checkpoint.Timestamp,
		Version:   checkpoint.Version,
	}

	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": checkpoint.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *CheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	var doc checkpointDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": checkpointID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", store.ErrCheckpointNotFound, checkpointID)
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return doc.toCheckpoint(), nil
}

// List returns all checkpoints for a thread ordered by version.
func (s *CheckpointStore) List(ctx context.Context, threadID string) ([]*store.Checkpoint, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"thread_id": threadID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer cursor.Close(ctx)

	var checkpoints []*store.Checkpoint
	for cursor.Next(ctx) {
		var doc checkpointDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, doc.toCheckpoint())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoints: %w", err)
	}

	return checkpoints, nil
}

// LatestByThread returns the highest-version checkpoint for a thread.
func (s *CheckpointStore) LatestByThread(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})

	var doc checkpointDoc
	err := s.collection.FindOne(ctx, bson.M{"thread_id": threadID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: thread %s", store.ErrCheckpointNotFound, threadID)
		}
		return nil, fmt.Errorf("failed to load latest checkpoint: %w", err)
	}
	return doc.toCheckpoint(), nil
}

// Delete removes a checkpoint.
func (s *CheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": checkpointID})
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes all checkpoints for a thread.
func (s *CheckpointStore) Clear(ctx context.Context, threadID string) error {
	_, err := s.collection.DeleteMany(ctx, bson.M{"thread_id": threadID})
	if err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}

func (d *checkpointDoc) toCheckpoint() *store.Checkpoint {
	return &store.Checkpoint{
		ID:        d.ID,
		ThreadID:  d.ThreadID,
		NodeName:  d.NodeName,
		State:     d.State,
		Metadata:  d.Metadata,
		Timestamp: d.Timestamp,
		Version:   d.Version,
	}
}
