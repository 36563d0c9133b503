package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablo-lozano-martin/genesis-sub005/store"
)

func TestSave(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewWithPool(mock, "checkpoints")

	cp := &store.Checkpoint{
		ID:        "cp-1",
		ThreadID:  "conv-1",
		NodeName:  "call_llm",
		State:     map[string]any{"input": "hello"},
		Timestamp: time.Now(),
		Version:   1,
	}

	stateJSON, _ := json.Marshal(cp.State)
	metadataJSON, _ := json.Marshal(cp.Metadata)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO checkpoints")).
		WithArgs(
			cp.ID,
			cp.ThreadID,
			cp.NodeName,
			stateJSON,
			metadataJSON,
			cp.Timestamp,
			cp.Version,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = s.Save(context.Background(), cp)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewWithPool(mock, "checkpoints")

	timestamp := time.Now()
	stateJSON, _ := json.Marshal(map[string]any{"input": "hello"})
	metadataJSON, _ := json.Marshal(map[string]any{"turn": float64(4)})

	rows := pgxmock.NewRows([]string{"id", "thread_id", "node_name", "state", "metadata", "timestamp", "version"}).
		AddRow("cp-1", "conv-1", "call_llm", stateJSON, metadataJSON, timestamp, 1)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, thread_id, node_name, state, metadata, timestamp, version FROM checkpoints WHERE id = $1")).
		WithArgs("cp-1").
		WillReturnRows(rows)

	loaded, err := s.Load(context.Background(), "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "cp-1", loaded.ID)
	assert.Equal(t, "conv-1", loaded.ThreadID)
	assert.Equal(t, 1, loaded.Version)

	state, ok := loaded.State.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello", state["input"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewWithPool(mock, "checkpoints")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, thread_id, node_name, state, metadata, timestamp, version FROM checkpoints WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrCheckpointNotFound)
}

func TestLatestByThread(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewWithPool(mock, "checkpoints")

	stateJSON, _ := json.Marshal(map[string]any{})
	rows := pgxmock.NewRows([]string{"id", "thread_id", "node_name", "state", "metadata", "timestamp", "version"}).
		AddRow("cp-3", "conv-1", "call_llm", stateJSON, []byte(nil), time.Now(), 3)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY version DESC")).
		WithArgs("conv-1").
		WillReturnRows(rows)

	latest, err := s.LatestByThread(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "cp-3", latest.ID)
	assert.Equal(t, 3, latest.Version)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewWithPool(mock, "checkpoints")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM checkpoints WHERE thread_id = $1")).
		WithArgs("conv-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	err = s.Clear(context.Background(), "conv-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
