package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GENESIS_AUTH_SECRET", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "memory", cfg.Checkpoint.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5, cfg.Chat.MaxToolIterations)
	assert.Equal(t, 32*1024, cfg.Chat.MaxInputBytes)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GENESIS_AUTH_SECRET", "test-secret")
	t.Setenv("GENESIS_SERVER_ADDR", ":9999")
	t.Setenv("GENESIS_LLM_PROVIDER", "ollama")
	t.Setenv("GENESIS_CHECKPOINT_BACKEND", "sqlite")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "sqlite", cfg.Checkpoint.Backend)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("GENESIS_AUTH_SECRET", "test-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7070"
llm:
  provider: anthropic
  model: claude-sonnet
chat:
  max_tool_iterations: 3
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Chat.MaxToolIterations)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("GENESIS_AUTH_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.secret")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("GENESIS_AUTH_SECRET", "test-secret")
	t.Setenv("GENESIS_CHECKPOINT_BACKEND", "floppy")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpoint backend")
}
