package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

// loadOwnedConversation fetches the conversation and enforces
// ownership. It writes the error response and returns nil when the
// caller may not proceed. A conversation owned by someone else returns
// 404 so IDs are not probeable.
func (s *Server) loadOwnedConversation(c *gin.Context) *domain.Conversation {
	conversation, err := s.conversations.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		} else {
			s.logger.Error("conversation lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return nil
	}
	if conversation.UserID != currentUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return nil
	}
	return conversation
}

type createConversationRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreateConversation(c *gin.Context) {
	// An empty or missing body is fine; the title defaults.
	var req createConversationRequest
	_ = c.ShouldBindJSON(&req)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = domain.DefaultConversationTitle
	}
	if len(title) > domain.MaxTitleLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is too long"})
		return
	}

	now := time.Now().UTC()
	conversation := &domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    currentUserID(c),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(c.Request.Context(), conversation); err != nil {
		s.logger.Error("conversation create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, conversation)
}

func (s *Server) handleListConversations(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	conversations, err := s.conversations.ListByUser(c.Request.Context(), currentUserID(c), skip, limit)
	if err != nil {
		s.logger.Error("conversation list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

func (s *Server) handleGetConversation(c *gin.Context) {
	conversation := s.loadOwnedConversation(c)
	if conversation == nil {
		return
	}
	c.JSON(http.StatusOK, conversation)
}

type updateConversationRequest struct {
	Title string `json:"title" binding:"required"`
}

func (s *Server) handleUpdateConversation(c *gin.Context) {
	conversation := s.loadOwnedConversation(c)
	if conversation == nil {
		return
	}

	var req updateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > domain.MaxTitleLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title"})
		return
	}

	conversation.Title = title
	if err := s.conversations.Update(c.Request.Context(), conversation); err != nil {
		s.logger.Error("conversation update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// handleDeleteConversation removes the conversation along with its
// messages and checkpoints.
func (s *Server) handleDeleteConversation(c *gin.Context) {
	conversation := s.loadOwnedConversation(c)
	if conversation == nil {
		return
	}
	ctx := c.Request.Context()

	if err := s.messages.DeleteByConversation(ctx, conversation.ID); err != nil {
		s.logger.Error("message cascade delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if s.checkpoints != nil {
		if err := s.checkpoints.Clear(ctx, conversation.ID); err != nil {
			s.logger.Warn("checkpoint cascade delete failed: %v", err)
		}
	}
	if err := s.conversations.Delete(ctx, conversation.ID); err != nil {
		s.logger.Error("conversation delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleListMessages(c *gin.Context) {
	conversation := s.loadOwnedConversation(c)
	if conversation == nil {
		return
	}

	messages, err := s.messages.ListByConversation(c.Request.Context(), conversation.ID)
	if err != nil {
		s.logger.Error("message list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, messages)
}
