// Package server exposes the REST and WebSocket API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pablo-lozano-martin/genesis-sub005/auth"
	"github.com/pablo-lozano-martin/genesis-sub005/chat"
	"github.com/pablo-lozano-martin/genesis-sub005/log"
	"github.com/pablo-lozano-martin/genesis-sub005/repository"
	"github.com/pablo-lozano-martin/genesis-sub005/store"
	"github.com/pablo-lozano-martin/genesis-sub005/transcribe"
)

// Options wires the server's dependencies.
type Options struct {
	Users         repository.UserRepository
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	Checkpoints   store.CheckpointStore
	Engine        *chat.Engine
	Tokens        *auth.TokenIssuer
	Transcriber   *transcribe.Service
	Logger        log.Logger
}

// Server is the HTTP API.
type Server struct {
	users         repository.UserRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	checkpoints   store.CheckpointStore
	engine        *chat.Engine
	tokens        *auth.TokenIssuer
	transcriber   *transcribe.Service
	logger        log.Logger

	router *gin.Engine
}

// New creates the server and registers its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop{}
	}

	s := &Server{
		users:         opts.Users,
		conversations: opts.Conversations,
		messages:      opts.Messages,
		checkpoints:   opts.Checkpoints,
		engine:        opts.Engine,
		tokens:        opts.Tokens,
		transcriber:   opts.Transcriber,
		logger:        logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/auth/register", s.handleRegister)
		api.POST("/auth/login", s.handleLogin)

		authorized := api.Group("")
		authorized.Use(s.requireAuth())
		{
			authorized.GET("/user/me", s.handleGetMe)
			authorized.PATCH("/user/me", s.handleUpdateMe)
			authorized.GET("/conversations", s.handleListConversations)
			authorized.POST("/conversations", s.handleCreateConversation)
			authorized.GET("/conversations/:id", s.handleGetConversation)
			authorized.PATCH("/conversations/:id", s.handleUpdateConversation)
			authorized.DELETE("/conversations/:id", s.handleDeleteConversation)
			authorized.GET("/conversations/:id/messages", s.handleListMessages)
			authorized.GET("/conversations/:id/export", s.handleExportConversation)
			authorized.POST("/transcriptions", s.handleTranscription)
		}
	}

	router.GET("/ws/chat", s.handleChatSocket)

	s.router = router
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
