// Package config loads service configuration from a YAML file and
// GENESIS_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Whisper    WhisperConfig    `mapstructure:"whisper"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Host     string `mapstructure:"host"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// CheckpointConfig selects where turn checkpoints are stored. Backend
// is one of memory, sqlite, redis, postgres, mongo.
type CheckpointConfig struct {
	Backend       string `mapstructure:"backend"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	PostgresURL   string `mapstructure:"postgres_url"`
}

type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type ChatConfig struct {
	SystemPrompt      string `mapstructure:"system_prompt"`
	MaxToolIterations int    `mapstructure:"max_tool_iterations"`
	MaxInputBytes     int    `mapstructure:"max_input_bytes"`
	EnableWebSearch   bool   `mapstructure:"enable_web_search"`
}

type WhisperConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from the given file (optional) and the
// environment. Environment variables use the GENESIS_ prefix with
// underscores, e.g. GENESIS_SERVER_ADDR or GENESIS_LLM_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Every key needs a default so env-only values are picked up when
	// unmarshalling.
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.host", "")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "genesis")
	v.SetDefault("checkpoint.backend", "memory")
	v.SetDefault("checkpoint.sqlite_path", "checkpoints.db")
	v.SetDefault("checkpoint.redis_addr", "")
	v.SetDefault("checkpoint.redis_password", "")
	v.SetDefault("checkpoint.redis_db", 0)
	v.SetDefault("checkpoint.postgres_url", "")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("chat.system_prompt", "You are a helpful assistant.")
	v.SetDefault("chat.max_tool_iterations", 5)
	v.SetDefault("chat.max_input_bytes", 32*1024)
	v.SetDefault("chat.enable_web_search", true)
	v.SetDefault("whisper.api_key", "")
	v.SetDefault("whisper.model", "whisper-1")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("GENESIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required (set GENESIS_AUTH_SECRET)")
	}
	switch c.Checkpoint.Backend {
	case "memory", "sqlite", "redis", "postgres", "mongo":
	default:
		return fmt.Errorf("unknown checkpoint backend: %q", c.Checkpoint.Backend)
	}
	return nil
}
