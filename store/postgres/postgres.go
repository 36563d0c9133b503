// Package postgres provides a CheckpointStore backed by PostgreSQL via
// pgx. The pool is abstracted behind DBPool so tests can substitute a
// mock.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pablo-lozano-martin/genesis-sub005/store"
)

// DBPool is the subset of pgxpool.Pool the store needs.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// CheckpointStore implements store.CheckpointStore using PostgreSQL.
type CheckpointStore struct {
	pool      DBPool
	tableName string
}

var _ store.CheckpointStore = (*CheckpointStore)(nil)

// Options configures the Postgres connection.
type Options struct {
	ConnString string
	TableName  string // Default "checkpoints"
}

// New creates a Postgres checkpoint store and connection pool.
func New(ctx context.Context, opts Options) (*CheckpointStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewWithPool(pool, opts.TableName), nil
}

// NewWithPool creates a store around an existing pool. Useful for
// testing with mocks.
func NewWithPool(pool DBPool, tableName string) *CheckpointStore {
	if tableName == "" {
		tableName = "checkpoints"
	}
	return &CheckpointStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the checkpoints table if it doesn't exist.
func (s *CheckpointStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL,
			node_name TEXT NOT NULL,
			state JSONB NOT NULL,
			metadata JSONB,
			timestamp TIMESTAMPTZ NOT NULL,
			version INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_thread_id ON %s (thread_id);
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *CheckpointStore) Close() {
	s.pool.Close()
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
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			thread_id = EXCLUDED.thread_id,
			node_name = EXCLUDED.node_name,
			state = EXCLUDED.state,
			metadata = EXCLUDED.metadata,
			timestamp = EXCLUDED.timestamp,
			version = EXCLUDED.version
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		checkpoint.ID,
		checkpoint.ThreadID,
		checkpoint.NodeName,
		stateJSON,
		metadataJSON,
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
		WHERE id = $1
	`, s.tableName)

	cp, err := scanOne(s.pool.QueryRow(ctx, query, checkpointID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
		WHERE thread_id = $1
		ORDER BY version ASC
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []*store.Checkpoint
	for rows.Next() {
		cp, err := scanOne(rows)
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
		WHERE thread_id = $1
		ORDER BY version DESC
		LIMIT 1
	`, s.tableName)

	cp, err := scanOne(s.pool.QueryRow(ctx, query, threadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: thread %s", store.ErrCheckpointNotFound, threadID)
		}
		return nil, fmt.Errorf("failed to load latest checkpoint: %w", err)
	}
	return cp, nil
}

// Delete removes a checkpoint.
func (s *CheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	_, err := s.pool.Exec(ctx, query, checkpointID)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes all checkpoints for a thread.
func (s *CheckpointStore) Clear(ctx context.Context, threadID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE thread_id = $1", s.tableName)
	_, err := s.pool.Exec(ctx, query, threadID)
	if err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row rowScanner) (*store.Checkpoint, error) {
	var cp store.Checkpoint
	var stateJSON []byte
	var metadataJSON []byte

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

	if err := json.Unmarshal(stateJSON, &cp.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &cp.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &cp, nil
}
