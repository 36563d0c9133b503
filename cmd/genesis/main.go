// Command genesis runs the chat backend.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/tools"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pablo-lozano-martin/genesis-sub005/auth"
	"github.com/pablo-lozano-martin/genesis-sub005/chat"
	"github.com/pablo-lozano-martin/genesis-sub005/config"
	"github.com/pablo-lozano-martin/genesis-sub005/llm"
	"github.com/pablo-lozano-martin/genesis-sub005/log"
	repomongo "github.com/pablo-lozano-martin/genesis-sub005/repository/mongo"
	"github.com/pablo-lozano-martin/genesis-sub005/server"
	"github.com/pablo-lozano-martin/genesis-sub005/store"
	storememory "github.com/pablo-lozano-martin/genesis-sub005/store/memory"
	storemongo "github.com/pablo-lozano-martin/genesis-sub005/store/mongo"
	storepostgres "github.com/pablo-lozano-martin/genesis-sub005/store/postgres"
	storeredis "github.com/pablo-lozano-martin/genesis-sub005/store/redis"
	storesqlite "github.com/pablo-lozano-martin/genesis-sub005/store/sqlite"
	"github.com/pablo-lozano-martin/genesis-sub005/tool"
	"github.com/pablo-lozano-martin/genesis-sub005/transcribe"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := log.NewDefaultGolog(log.ParseLevel(cfg.Log.Level))

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// MongoDB holds users, conversations, and messages.
	client, err := mongodriver.Connect(ctx, mongooptions.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}()
	db := client.Database(cfg.Mongo.Database)

	repos, err := repomongo.New(ctx, db)
	if err != nil {
		return err
	}

	checkpoints, cleanup, err := buildCheckpointStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer cleanup()

	model, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Host:     cfg.LLM.Host,
	})
	if err != nil {
		return err
	}

	registered := []tools.Tool{
		tool.AddTool{},
		tool.MultiplyTool{},
		&tool.ClockTool{},
	}
	if cfg.Chat.EnableWebSearch {
		registered = append(registered, tool.NewWebSearchTool(tool.WebSearchOptions{}))
	}

	engine, err := chat.NewEngine(chat.Options{
		Model:             model,
		Executor:          tool.NewExecutor(registered),
		Conversations:     repos.Conversations,
		Messages:          repos.Messages,
		Checkpoints:       checkpoints,
		Logger:            logger,
		SystemPrompt:      cfg.Chat.SystemPrompt,
		MaxToolIterations: cfg.Chat.MaxToolIterations,
		MaxInputBytes:     cfg.Chat.MaxInputBytes,
	})
	if err != nil {
		return err
	}

	var transcriber *transcribe.Service
	if key := whisperKey(cfg); key != "" {
		transcriber = transcribe.New(key, cfg.Whisper.Model)
	}

	srv := server.New(server.Options{
		Users:         repos.Users,
		Conversations: repos.Conversations,
		Messages:      repos.Messages,
		Checkpoints:   checkpoints,
		Engine:        engine,
		Tokens:        auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		Transcriber:   transcriber,
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// whisperKey prefers a dedicated whisper key and falls back to the LLM
// key when the provider is OpenAI.
func whisperKey(cfg *config.Config) string {
	if cfg.Whisper.APIKey != "" {
		return cfg.Whisper.APIKey
	}
	if cfg.LLM.Provider == llm.ProviderOpenAI {
		return cfg.LLM.APIKey
	}
	return ""
}

func buildCheckpointStore(ctx context.Context, cfg *config.Config, db *mongodriver.Database) (store.CheckpointStore, func(), error) {
	nop := func() {}

	switch cfg.Checkpoint.Backend {
	case "memory":
		return storememory.New(), nop, nil

	case "sqlite":
		s, err := storesqlite.New(storesqlite.Options{Path: cfg.Checkpoint.SQLitePath})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case "redis":
		s := storeredis.New(storeredis.Options{
			Addr:     cfg.Checkpoint.RedisAddr,
			Password: cfg.Checkpoint.RedisPassword,
			DB:       cfg.Checkpoint.RedisDB,
		})
		return s, func() { s.Close() }, nil

	case "postgres":
		s, err := storepostgres.New(ctx, storepostgres.Options{ConnString: cfg.Checkpoint.PostgresURL})
		if err != nil {
			return nil, nil, err
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case "mongo":
		s, err := storemongo.New(ctx, db.Collection("checkpoints"))
		if err != nil {
			return nil, nil, err
		}
		return s, nop, nil

	default:
		return nil, nil, errors.New("unknown checkpoint backend: " + cfg.Checkpoint.Backend)
	}
}
