// Package sqlite provides a CheckpointStore backed by SQLite, suitable
// for single-node deployments that need checkpoints to survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pablo-lozano-martin/genesis-sub005/store"
)

// CheckpointStore implements store.CheckpointStore using SQLite.
type CheckpointStore struct {
	db        *sql.DB
	tableName string
}

var _ store.CheckpointStore = (*CheckpointStore)(nil)

// Options configures the SQLite connection.
type Options struct {
	Path      string
	TableName string // Default "checkpoints"
}

// New opens the database at opts.Path and ensures the schema exists.
func New(opts Options) (*CheckpointStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "checkpoints"
	}

	s := &CheckpointStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *CheckpointStore) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL,
			node_name TEXT NOT NULL,
			state TEXT NOT NULL,
			metadata TEXT,
			timestamp DATETIME NOT NULL,
			version INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_thread_id ON %s (thread_id);
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *CheckpointStore) Close() error {
	return s.db.Close()
}

// Save stores a checkpoint.
func (s *CheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	stateJSON, err := json.Marshal(checkpoint.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	metadataJSON, err := json.Marshal(checkpoint.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, thread_id, node_name, state, metadata, timestamp, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			thread_id = excluded.thread_id,
			node_name = excluded.node_name,
			state = excluded.state,
			metadata = excluded.metadata,
			timestamp = excluded.timestamp,
			version = excluded.version
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		checkpoint.ID,
		checkpoint.ThreadID,
		checkpoint.NodeName,
		string(stateJSON),
		string(metadataJSON),
		checkpoint.Timestamp,
		checkpoint.Version,
	)

	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	return nil
}

// Load retrieves a checkpoint by ID.
func (s *CheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, thread_id, node_name, state, metadata, timestamp, version
		FROM %s
		WHERE id = ?
	`, s.tableName)

	cp, err := s.scanOne(s.db.QueryRowContext(ctx, query, checkpointID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrCheckpointNotFound, checkpointID)
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return cp, nil
}

// List returns all checkpoints for a thread ordered by version.
func (s *CheckpointStore) List(ctx context.Context, threadID string) ([]*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, thread_id, node_name, state, metadata, timestamp, version
		FROM %s
		WHERE thread_id = ?
		ORDER BY version ASC
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []*store.Checkpoint
	for rows.Next() {
		cp, err := s.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint row: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoint rows: %w", err)
	}

	return checkpoints, nil
}

// LatestByThread returns the highest-version checkpoint for a thread.
func (s *CheckpointStore) LatestByThread(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, thread_id, node_name, state, metadata, timestamp, version
		FROM %s
		WHERE thread_id = ?
		ORDER BY version DESC
		LIMIT 1
	`, s.tableName)

	cp, err := s.scanOne(s.db.QueryRowContext(ctx, query, threadID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: thread %s", store.ErrCheckpointNotFound, threadID)
		}
		return nil, fmt.Errorf("failed to load latest checkpoint: %w", err)
	}
	return cp, nil
}

// Delete removes a checkpoint.
func (s *CheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	_, err := s.db.ExecContext(ctx, query, checkpointID)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes all checkpoints for a thread.
func (s *CheckpointStore) Clear(ctx context.Context, threadID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE thread_id = ?", s.tableName)
	_, err := s.db.ExecContext(ctx, query, threadID)
	if err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *CheckpointStore) scanOne(row rowScanner) (*store.Checkpoint, error) {
	var cp store.Checkpoint
	var stateJSON string
	var metadataJSON string

	err := row.Scan(
		&cp.ID,
		&cp.ThreadID,
		&cp.NodeName,
		&stateJSON,
		&metadataJSON,
		&cp.Timestamp,
		&cp.Version,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(stateJSON), &cp.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if len(metadataJSON) > 0 && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &cp.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &cp, nil
}
